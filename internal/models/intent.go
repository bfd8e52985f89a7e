package models

// Intent is the action the router selects for an utterance
type Intent string

const (
	IntentTellTime           Intent = "tell_time"
	IntentTellDate           Intent = "tell_date"
	IntentSearchEncyclopedia Intent = "search_encyclopedia"
	IntentSearchWeb          Intent = "search_web"
	IntentOpenTarget         Intent = "open_target"
	IntentGetWeather         Intent = "get_weather"
	IntentGetNews            Intent = "get_news"
	IntentSendEmailPrompt    Intent = "send_email_prompt"
	IntentTellJoke           Intent = "tell_joke"
	IntentIdentity           Intent = "identity"
	IntentGetUserName        Intent = "get_user_name"
	IntentSetUserName        Intent = "set_user_name"
	IntentExit               Intent = "exit"
	IntentCalculate          Intent = "calculate"
	IntentSetAlarm           Intent = "set_alarm"
	IntentSetReminder        Intent = "set_reminder"
	IntentDefine             Intent = "define"
	IntentPlayVideo          Intent = "play_video"
	IntentUnrecognized       Intent = "unrecognized"
)

// Channel hints where a response should surface
type Channel string

const (
	ChannelSpoken    Channel = "spoken"
	ChannelDisplayed Channel = "displayed"
	ChannelBoth      Channel = "both"
)

// ResponseEvent is what every handler produces: text plus a channel hint
type ResponseEvent struct {
	Intent  Intent
	Text    string
	Channel Channel
}

package launcher

import (
	"fmt"
	"log"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"delta/internal/config"
)

// Launcher opens URLs in the default browser and starts local applications.
// Commands run detached so a slow browser start never blocks the caller.
type Launcher struct {
	targets *config.Targets
	run     func(name string, args ...string) error
	wg      sync.WaitGroup
}

func New(targets *config.Targets) *Launcher {
	if targets == nil {
		targets = config.DefaultTargets()
	}
	return &Launcher{
		targets: targets,
		run: func(name string, args ...string) error {
			cmd := exec.Command(name, args...)
			if err := cmd.Start(); err != nil {
				return err
			}
			// Reap the child so exited launchers don't linger as zombies
			go cmd.Wait()
			return nil
		},
	}
}

// OpenTarget resolves name against the configured aliases. Known URL aliases
// open in the browser and known command aliases start the program. Anything
// else must already look like a website (contain a dot) to open; bare words
// with no alias are rejected.
func (l *Launcher) OpenTarget(name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return fmt.Errorf("nothing to open")
	}

	if target, ok := l.targets.URLs[name]; ok {
		return l.OpenURL(target)
	}
	if command, ok := l.targets.Commands[name]; ok {
		parts := strings.Fields(command)
		l.start(parts[0], parts[1:]...)
		return nil
	}

	site := strings.ReplaceAll(name, " ", "")
	if !strings.Contains(site, ".") {
		return fmt.Errorf("no alias or website for %q", name)
	}
	return l.OpenURL("http://" + site)
}

// OpenURL opens address in the platform's default browser
func (l *Launcher) OpenURL(address string) error {
	if !strings.HasPrefix(address, "http://") && !strings.HasPrefix(address, "https://") {
		address = "https://" + address
	}

	switch runtime.GOOS {
	case "darwin":
		l.start("open", address)
	case "windows":
		l.start("rundll32", "url.dll,FileProtocolHandler", address)
	default:
		l.start("xdg-open", address)
	}
	return nil
}

// SearchWeb opens a Google search for the query
func (l *Launcher) SearchWeb(query string) error {
	return l.OpenURL("https://www.google.com/search?q=" + url.QueryEscape(query))
}

// PlayVideo opens YouTube search results for the query
func (l *Launcher) PlayVideo(query string) error {
	return l.OpenURL("https://www.youtube.com/results?search_query=" + url.QueryEscape(query))
}

func (l *Launcher) start(name string, args ...string) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		if err := l.run(name, args...); err != nil {
			log.Printf("⚠️  [LAUNCHER] Failed to start %s: %v", name, err)
		}
	}()
}

// Wait blocks until all in-flight launches have been handed to the OS
func (l *Launcher) Wait() {
	l.wg.Wait()
}

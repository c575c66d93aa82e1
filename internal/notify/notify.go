package notify

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/billmal071/pavilion/internal/config"
)

// Notification kinds
const (
	TypeSuccess = "success"
	TypeError   = "error"
	TypeInfo    = "info"
)

const appName = "pavilion"

// commandTimeout bounds a single notifier process
const commandTimeout = 5 * time.Second

// run executes a notifier command; replaced in tests
var run = func(name string, args ...string) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	return exec.CommandContext(ctx, name, args...).Run()
}

var pending sync.WaitGroup

// Send sends a desktop notification in the background if enabled in config.
// Short-lived commands call Wait before exiting.
func Send(title, message, kind string) {
	if !config.Get().Notifications {
		return
	}
	pending.Add(1)
	go func() {
		defer pending.Done()
		if err := Deliver(runtime.GOOS, title, message, kind); err != nil {
			log.Debug().Err(err).Str("title", title).Msg("notification not delivered")
		}
	}()
}

// Wait blocks until every notification from Send has been handed to the
// platform notifier, or timeout passes. It reports whether all finished.
func Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// UploadComplete announces a stored book
func UploadComplete(title string) {
	Send("Upload Complete", title, TypeSuccess)
}

// UploadFailed announces a rejected upload
func UploadFailed(filename, reason string) {
	Send("Upload Failed", withReason(filename, reason), TypeError)
}

// BookDeleted announces a removed book
func BookDeleted(id string) {
	Send("Book Deleted", "Book "+id+" was removed from the library", TypeInfo)
}

// DownloadComplete announces a saved book file
func DownloadComplete(filename string) {
	Send("Download Complete", filename, TypeSuccess)
}

// DownloadFailed announces a failed download
func DownloadFailed(filename, reason string) {
	Send("Download Failed", withReason(filename, reason), TypeError)
}

func withReason(subject, reason string) string {
	if reason == "" {
		return subject
	}
	return subject + ": " + reason
}

// Deliver runs the platform notifier synchronously
func Deliver(goos, title, message, kind string) error {
	name, args, err := command(goos, title, message, kind)
	if err != nil {
		return err
	}
	return run(name, args...)
}

func command(goos, title, message, kind string) (string, []string, error) {
	switch goos {
	case "linux":
		icon := "dialog-information"
		switch kind {
		case TypeSuccess:
			icon = "dialog-ok"
		case TypeError:
			icon = "dialog-error"
		}
		return "notify-send", []string{"-i", icon, "-a", appName, title, message}, nil

	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`,
			appleScriptEscaper.Replace(message), appleScriptEscaper.Replace(title))
		return "osascript", []string{"-e", script}, nil

	case "windows":
		script := `
	[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
	[Windows.Data.Xml.Dom.XmlDocument, Windows.Data.Xml.Dom.XmlDocument, ContentType = WindowsRuntime] | Out-Null
	$template = '<toast><visual><binding template="ToastText02"><text id="1">` + xmlEscaper.Replace(title) + `</text><text id="2">` + xmlEscaper.Replace(message) + `</text></binding></visual></toast>'
	$xml = New-Object Windows.Data.Xml.Dom.XmlDocument
	$xml.LoadXml($template)
	$toast = [Windows.UI.Notifications.ToastNotification]::new($xml)
	[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier("` + appName + `").Show($toast)
	`
		return "powershell", []string{"-Command", script}, nil

	default:
		return "", nil, fmt.Errorf("notifications not supported on %s", goos)
	}
}

var appleScriptEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// apostrophes are also escaped since the template sits in a single quoted string
var xmlEscaper = strings.NewReplacer(
	"<", "&lt;",
	">", "&gt;",
	"&", "&amp;",
	`"`, "&quot;",
	"'", "&apos;",
)

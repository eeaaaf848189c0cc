// Package window shows the running application to the user.
package window

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/pkg/browser"
	"github.com/rs/zerolog"
	"github.com/zserge/lorca"
)

// Modes accepted by Opener.
const (
	ModeApp     = "app"
	ModeBrowser = "browser"
)

const (
	defaultWidth  = 1280
	defaultHeight = 850

	// How long Load waits for the new document before re-arming the lockdown.
	navigationTimeout = 5 * time.Second
	navigationPoll    = 100 * time.Millisecond
)

// Window is a surface showing the application.
type Window interface {
	// Load navigates the window to url.
	Load(url string) error
	// Done is closed when the user closes the window.
	Done() <-chan struct{}
	Close() error
}

// Options configure an Opener.
type Options struct {
	Mode       string
	Width      int
	Height     int
	ProfileDir string
	Logger     zerolog.Logger
}

// Opener shows the application either in a dedicated Chrome app-mode window or
// in the default browser.
type Opener struct {
	opts    Options
	newUI   func(url, dir string, width, height int, customArgs ...string) (lorca.UI, error)
	openURL func(url string) error
}

// NewOpener builds an Opener. Unknown modes fall back to ModeApp.
func NewOpener(opts Options) *Opener {
	if opts.Mode != ModeBrowser {
		opts.Mode = ModeApp
	}
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultHeight
	}
	return &Opener{opts: opts, newUI: lorca.New, openURL: browser.OpenURL}
}

// Mode reports the effective window mode.
func (o *Opener) Mode() string {
	return o.opts.Mode
}

// Open shows target. When the app window cannot be created (no Chrome or
// Chromium installed) it opens the default browser instead.
func (o *Opener) Open(target string) (Window, error) {
	origin, err := originOf(target)
	if err != nil {
		return nil, err
	}
	if o.opts.Mode == ModeApp {
		win, err := o.openApp(target, origin)
		if err == nil {
			return win, nil
		}
		o.opts.Logger.Warn().Err(err).Msg("app window unavailable, opening in browser")
	}
	return o.openBrowser(target)
}

func (o *Opener) openApp(target, origin string) (Window, error) {
	ui, err := o.newUI(target, o.opts.ProfileDir, o.opts.Width, o.opts.Height)
	if err != nil {
		return nil, fmt.Errorf("launch app window: %w", err)
	}
	if err := ui.Bind("superplaneOpenExternal", o.openURL); err != nil {
		o.opts.Logger.Warn().Err(err).Msg("bind external link handler")
	}
	win := &appWindow{UI: ui, script: lockdownScript(origin), logger: o.opts.Logger}
	win.lockdown()
	o.opts.Logger.Info().Str("url", target).Msg("app window opened")
	return win, nil
}

// appWindow is a lorca window whose navigation lockdown survives reloads.
type appWindow struct {
	lorca.UI
	script string
	logger zerolog.Logger
}

// Load navigates the window and installs the lockdown in the new document.
func (w *appWindow) Load(target string) error {
	if err := w.UI.Load(target); err != nil {
		return err
	}
	w.awaitNewDocument()
	w.lockdown()
	return nil
}

// awaitNewDocument waits until the page that was showing before Load has been
// replaced. The old document still carries the lockdown marker; the new one
// does not until lockdown runs again.
func (w *appWindow) awaitNewDocument() {
	deadline := time.Now().Add(navigationTimeout)
	for time.Now().Before(deadline) {
		v := w.UI.Eval(lockdownMarkerCheck)
		if v != nil && v.Err() == nil && v.String() == "fresh" {
			return
		}
		time.Sleep(navigationPoll)
	}
	w.logger.Debug().Msg("new document not detected before re-arming navigation lockdown")
}

func (w *appWindow) lockdown() {
	if v := w.UI.Eval(w.script); v != nil && v.Err() != nil {
		w.logger.Warn().Err(v.Err()).Msg("install navigation lockdown")
	}
}

func (o *Opener) openBrowser(target string) (Window, error) {
	if err := o.openURL(target); err != nil {
		return nil, fmt.Errorf("open browser: %w", err)
	}
	o.opts.Logger.Info().Str("url", target).Msg("opened in browser")
	return newDetached(), nil
}

// lockdownScript keeps the window on origin: links and window.open calls to
// any other origin are handed to the system browser.
func lockdownScript(origin string) string {
	return fmt.Sprintf(`(function () {
  if (window.__superplaneLockdown) { return; }
  window.__superplaneLockdown = true;
  const origin = %q;
  const external = (href) => {
    try { return new URL(href, location.href).origin !== origin; } catch (e) { return false; }
  };
  document.addEventListener("click", (event) => {
    const link = event.target.closest && event.target.closest("a[href]");
    if (link && external(link.href)) {
      event.preventDefault();
      superplaneOpenExternal(new URL(link.href, location.href).href);
    }
  }, true);
  const open = window.open;
  window.open = function (href, ...rest) {
    if (href && external(href)) {
      superplaneOpenExternal(new URL(href, location.href).href);
      return null;
    }
    return open.call(window, href, ...rest);
  };
})();`, origin)
}

// lockdownMarkerCheck reports "fresh" for a document lockdownScript has not
// run in yet, once it has finished loading.
const lockdownMarkerCheck = `(window.__superplaneLockdown || document.readyState === "loading") ? "wait" : "fresh"`

func originOf(target string) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("parse application url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("application url must be absolute: %q", target)
	}
	return u.Scheme + "://" + u.Host, nil
}

// detached stands in for a browser tab the launcher cannot observe. Done only
// closes when Close is called.
type detached struct {
	once sync.Once
	done chan struct{}
}

func newDetached() *detached {
	return &detached{done: make(chan struct{})}
}

// Load is a no-op: the tab already points at the application origin and the
// user reloads it from the browser.
func (d *detached) Load(string) error {
	return nil
}

func (d *detached) Done() <-chan struct{} {
	return d.done
}

func (d *detached) Close() error {
	d.once.Do(func() { close(d.done) })
	return nil
}

package guardfakes

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-auth-client/guard"
)

// FakeMenuProvider returns a fixed menu map or error.
type FakeMenuProvider struct {
	mu        sync.Mutex
	MenuMap   *guard.MenuMap
	Err       error
	CallCount int
}

var _ guard.MenuProvider = (*FakeMenuProvider)(nil)

func (f *FakeMenuProvider) Menu(_ context.Context) (*guard.MenuMap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CallCount++
	if f.Err != nil {
		return nil, f.Err
	}
	return f.MenuMap, nil
}

// SetErr swaps the error returned by subsequent Menu calls.
func (f *FakeMenuProvider) SetErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Err = err
}

// SetMenu swaps the menu map returned by subsequent Menu calls.
func (f *FakeMenuProvider) SetMenu(menu *guard.MenuMap) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.MenuMap = menu
	f.Err = nil
}

// Calls returns how many times Menu was invoked.
func (f *FakeMenuProvider) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.CallCount
}

// FakeNavigator records redirect-to-login invocations.
type FakeNavigator struct {
	mu          sync.Mutex
	ReturnPaths []string
}

var _ guard.Navigator = (*FakeNavigator)(nil)

func (f *FakeNavigator) RedirectToLogin(returnPath string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ReturnPaths = append(f.ReturnPaths, returnPath)
}

func (f *FakeNavigator) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ReturnPaths)
}

func (f *FakeNavigator) LastReturnPath() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.ReturnPaths) == 0 {
		return ""
	}
	return f.ReturnPaths[len(f.ReturnPaths)-1]
}

// FakeAlerter records warnings and blocking errors, keeping the last retry
// callback so tests can drive it.
type FakeAlerter struct {
	mu             sync.Mutex
	Warnings       []string
	BlockingErrors []string
	LastRetry      func()
}

var _ guard.Alerter = (*FakeAlerter)(nil)

func (f *FakeAlerter) ShowBlockingError(title, message string, onRetry func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.BlockingErrors = append(f.BlockingErrors, title+": "+message)
	f.LastRetry = onRetry
}

func (f *FakeAlerter) ShowWarning(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Warnings = append(f.Warnings, message)
}

func (f *FakeAlerter) BlockingErrorCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.BlockingErrors)
}

func (f *FakeAlerter) WarningCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Warnings)
}

func (f *FakeAlerter) Retry() {
	f.mu.Lock()
	retry := f.LastRetry
	f.mu.Unlock()
	if retry != nil {
		retry()
	}
}

// FakeRenderer records every rendering decision in order.
type FakeRenderer struct {
	mu      sync.Mutex
	Calls   []string
	LastErr error
}

var _ guard.Renderer = (*FakeRenderer)(nil)

func (f *FakeRenderer) RenderLoading()      { f.record("loading") }
func (f *FakeRenderer) RenderDenied()       { f.record("denied") }
func (f *FakeRenderer) RenderContent()      { f.record("content") }
func (f *FakeRenderer) RenderRevalidating() { f.record("revalidating") }

func (f *FakeRenderer) RenderError(err error, _ func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "error")
	f.LastErr = err
}

func (f *FakeRenderer) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, call)
}

func (f *FakeRenderer) Rendered() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Calls))
	copy(out, f.Calls)
	return out
}

// FakeConfig is a static guard configuration.
type FakeConfig struct {
	Bypass      bool
	DefaultPage string
}

var _ guard.Config = FakeConfig{}

func (f FakeConfig) GetGuardBypass() bool   { return f.Bypass }
func (f FakeConfig) GetDefaultPage() string { return f.DefaultPage }

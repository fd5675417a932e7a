package integration_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
)

func TestWebUIEditing(t *testing.T) {
	requireLong(t)
	ts := newTestServer(t)
	server := ts.start(t)

	ctx, cancel := newChromedpContext(t)
	defer cancel()
	if err := chromedp.Run(ctx); err != nil {
		t.Skipf("chromedp failed to start: %v", err)
	}

	var title string
	var findOpen bool
	var pattern string
	err := chromedp.Run(ctx,
		chromedp.Navigate(server.URL),
		chromedp.WaitVisible(`#editor`, chromedp.ByID),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return waitForActiveTab(ctx, "Untitled", 5*time.Second)
		}),
		chromedp.SendKeys(`#editor`, "hello world", chromedp.ByID),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return waitForActiveTab(ctx, "*Untitled", 5*time.Second)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return waitForText(ctx, "#status", "11 characters", 5*time.Second)
		}),
		chromedp.Title(&title),
		chromedp.Evaluate(`document.querySelector('[data-action="find"]').click()`, nil),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return waitForDialog(ctx, "find-dialog", true, 5*time.Second)
		}),
		chromedp.SendKeys(`#find-pattern`, "world", chromedp.ByID),
		chromedp.Click(`#find-next`, chromedp.ByID),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return waitForSelection(ctx, 6, 11, 5*time.Second)
		}),
		chromedp.Value(`#find-pattern`, &pattern, chromedp.ByID),
		chromedp.Click(`#find-close`, chromedp.ByID),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return waitForDialog(ctx, "find-dialog", false, 5*time.Second)
		}),
		chromedp.Evaluate(`document.getElementById('find-dialog').open`, &findOpen),
	)
	if err != nil {
		t.Fatalf("chromedp run: %v", err)
	}
	if title != "*Untitled - Notepad" {
		t.Fatalf("expected modified title, got %q", title)
	}
	if pattern != "world" {
		t.Fatalf("expected find pattern to stick, got %q", pattern)
	}
	if findOpen {
		t.Fatalf("expected find dialog closed")
	}
}

func TestWebUITabs(t *testing.T) {
	requireLong(t)
	ts := newTestServer(t)
	server := ts.start(t)

	ctx, cancel := newChromedpContext(t)
	defer cancel()
	if err := chromedp.Run(ctx); err != nil {
		t.Skipf("chromedp failed to start: %v", err)
	}

	err := chromedp.Run(ctx,
		chromedp.Navigate(server.URL),
		chromedp.WaitVisible(`#editor`, chromedp.ByID),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return waitForTabCount(ctx, 1, 5*time.Second)
		}),
		chromedp.Click(`#add-tab`, chromedp.ByID),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return waitForTabCount(ctx, 2, 5*time.Second)
		}),
		chromedp.Evaluate(`document.querySelector('#tabs .tab.active .close').click()`, nil),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return waitForTabCount(ctx, 1, 5*time.Second)
		}),
	)
	if err != nil {
		t.Fatalf("chromedp run: %v", err)
	}
}

func newChromedpContext(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, cancel := chromedp.NewContext(allocCtx)
	ctx, timeoutCancel := context.WithTimeout(ctx, 30*time.Second)
	return ctx, func() {
		timeoutCancel()
		cancel()
		allocCancel()
	}
}

func waitForText(ctx context.Context, selector, needle string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var last string
	for time.Now().Before(deadline) {
		var text string
		script := fmt.Sprintf(`(document.querySelector(%q)||{}).textContent||''`, selector)
		if err := chromedp.Evaluate(script, &text).Do(ctx); err == nil {
			last = text
			if strings.Contains(text, needle) {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("timeout waiting for %s to include %q (last=%q)", selector, needle, last)
}

func waitForActiveTab(ctx context.Context, expected string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var last string
	for time.Now().Before(deadline) {
		var text string
		if err := chromedp.Evaluate(`(() => {
			const el = document.querySelector('#tabs .tab.active span');
			return el ? el.textContent : '';
		})()`, &text).Do(ctx); err == nil {
			last = text
			if text == expected {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("timeout waiting for active tab %q (last=%q)", expected, last)
}

func waitForTabCount(ctx context.Context, expected int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	last := -1
	for time.Now().Before(deadline) {
		var count int
		if err := chromedp.Evaluate(`document.querySelectorAll('#tabs .tab').length`, &count).Do(ctx); err == nil {
			last = count
			if count == expected {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("timeout waiting for %d tabs (last=%d)", expected, last)
}

func waitForDialog(ctx context.Context, id string, open bool, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		var state bool
		script := fmt.Sprintf(`!!(document.getElementById(%q)||{}).open`, id)
		if err := chromedp.Evaluate(script, &state).Do(ctx); err == nil && state == open {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("timeout waiting for dialog %s open=%v", id, open)
}

func waitForSelection(ctx context.Context, start, end int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var last []int
	for time.Now().Before(deadline) {
		var sel []int
		if err := chromedp.Evaluate(`(() => {
			const ed = document.getElementById('editor');
			return [ed.selectionStart, ed.selectionEnd];
		})()`, &sel).Do(ctx); err == nil {
			last = sel
			if len(sel) == 2 && sel[0] == start && sel[1] == end {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("timeout waiting for selection [%d,%d] (last=%v)", start, end, last)
}

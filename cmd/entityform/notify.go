package main

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/goliatone/go-entityform/pkg/formsync"
)

// notifier prints store notifications to the terminal.
type notifier struct {
	out io.Writer
}

func newNotifier(out io.Writer) *notifier {
	return &notifier{out: out}
}

func (n *notifier) Success(message string) {
	fmt.Fprintln(n.out, "ok:", message)
}

func (n *notifier) Failure(message string) {
	fmt.Fprintln(n.out, "error:", message)
}

// logNavigator records navigation intents; a terminal session has no routes.
func logNavigator(logger *zap.Logger) formsync.Navigator {
	return formsync.NavigatorFunc(func(route string) {
		logger.Info("navigate", zap.String("route", route))
	})
}

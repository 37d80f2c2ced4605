// Package logsvc provides the production core.Logger backed by Rollbar,
// mirroring everything to a standard logger for local output.
package logsvc

import (
	"log"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/plangrid/matcast/core"
	"github.com/plangrid/matcast/core/user"
)

type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std}
}

// Enable toggles reporting to Rollbar. Local output stays on.
func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// report sends msg and args at the given severity. A user.User among the
// args becomes the Rollbar person (first one wins) instead of a payload
// value; without one the person is cleared so entries are not attributed
// to whoever was logged last.
func (l RollbarLogger) report(send func(...interface{}), msg string, args []interface{}) {
	payload := make([]interface{}, 0, len(args)+1)
	payload = append(payload, msg)
	var person *user.User
	for _, arg := range args {
		usr, ok := arg.(user.User)
		if !ok {
			payload = append(payload, arg)
			continue
		}
		if person == nil {
			person = &usr
		}
	}
	if person != nil {
		rollbar.SetPerson(person.ID, person.Username, person.Email)
	} else {
		rollbar.ClearPerson()
	}
	send(payload...)

	l.std.Println(msg)
	for _, arg := range payload[1:] {
		l.std.Printf("%+v\n", arg)
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) { l.report(rollbar.Debug, msg, args) }

func (l RollbarLogger) Info(msg string, args ...interface{}) { l.report(rollbar.Info, msg, args) }

func (l RollbarLogger) Warn(msg string, args ...interface{}) { l.report(rollbar.Warning, msg, args) }

func (l RollbarLogger) Error(msg string, args ...interface{}) { l.report(rollbar.Error, msg, args) }

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.report(rollbar.Critical, msg, args)
	l.std.Fatal(msg)
}

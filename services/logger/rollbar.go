// Package logsvc implements core.Logger on top of a std logger and Rollbar.
package logsvc

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/cpgs-hub/backend/core"
	"github.com/cpgs-hub/backend/core/identity"
)

// RollbarLogger writes every entry to std. Entries are reported to Rollbar while it is enabled.
type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	host, _ := os.Hostname()
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(conf.RollbarToken != "" && !conf.TestMode)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// entry is one log call with its args sorted out.
// Callers pass, in any order: an error, a map of extra fields, the acting identity.
type entry struct {
	msg    string
	err    error
	extras map[string]interface{}
	caller *identity.Summary // never the full Identity: it carries the password hash
}

func newEntry(msg string, args []interface{}) entry {
	e := entry{msg: msg, extras: make(map[string]interface{})}
	var rest []interface{}
	for _, arg := range args {
		switch v := arg.(type) {
		case error:
			if e.err == nil {
				e.err = v
				continue
			}
		case map[string]interface{}:
			for k, val := range v {
				e.extras[k] = val
			}
			continue
		case identity.Identity:
			if e.caller == nil {
				s := v.Summary()
				e.caller = &s
			}
			continue
		}
		rest = append(rest, arg)
	}
	if len(rest) > 0 {
		e.extras["args"] = rest
	}
	return e
}

func (e entry) String() string {
	var b strings.Builder
	b.WriteString(e.msg)
	if e.err != nil && !strings.Contains(e.msg, e.err.Error()) {
		fmt.Fprintf(&b, ": %v", e.err)
	}
	if len(e.extras) > 0 {
		fmt.Fprintf(&b, " %v", e.extras)
	}
	if e.caller != nil {
		fmt.Fprintf(&b, " caller=%s <%s>", e.caller.ID, e.caller.Email)
	}
	return b.String()
}

func (l RollbarLogger) log(level string, msg string, args []interface{}) entry {
	e := newEntry(msg, args)
	l.std.Printf("%s %s", strings.ToUpper(level), e)

	if e.caller != nil {
		rollbar.SetPerson(e.caller.ID, e.caller.Name, e.caller.Email)
	} else {
		rollbar.ClearPerson()
	}
	if e.err != nil {
		e.extras["message"] = e.msg
		rollbar.ErrorWithExtras(level, e.err, e.extras)
	} else {
		rollbar.MessageWithExtras(level, e.msg, e.extras)
	}
	return e
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) { l.log(rollbar.DEBUG, msg, args) }

func (l RollbarLogger) Info(msg string, args ...interface{}) { l.log(rollbar.INFO, msg, args) }

func (l RollbarLogger) Warn(msg string, args ...interface{}) { l.log(rollbar.WARN, msg, args) }

func (l RollbarLogger) Error(msg string, args ...interface{}) { l.log(rollbar.ERR, msg, args) }

// Fatal reports msg, waits for Rollbar to flush and exits.
func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	e := l.log(rollbar.CRIT, msg, args)
	rollbar.Wait()
	l.std.Fatal(e.msg)
}

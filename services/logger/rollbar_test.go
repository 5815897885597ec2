package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/cpgs-hub/backend/core"
	"github.com/cpgs-hub/backend/core/identity"
)

func TestRollbarLogger_Print(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(log.New(&buf, "", 0), &core.Config{Env: "TEST", TestMode: true})
	logger.Enable(false)

	usr := identity.Identity{ID: "u1", Name: "Sam", Email: "sam@test.com", PasswordHash: []byte("secret-hash")}
	logger.Error("chat failed", errors.New("boom"), usr)
	logger.Warn("rate limiter unavailable: redis down", errors.New("redis down"))

	out := buf.String()
	assert.Contains(t, out, "ERROR chat failed: boom caller=u1 <sam@test.com>\n")
	assert.Contains(t, out, "WARNING rate limiter unavailable: redis down\n")
	assert.NotContains(t, out, "secret-hash")
}

func TestNewEntry(t *testing.T) {
	err := errors.New("boom")
	tests := []struct {
		name string
		args []interface{}
		want entry
	}{
		{name: "message only", want: entry{msg: "msg", extras: map[string]interface{}{}}},
		{
			name: "first error and first identity win",
			args: []interface{}{err, identity.Identity{ID: "u1", Email: "a@x.com"}, errors.New("other"), identity.Identity{ID: "u2"}},
			want: entry{
				msg:    "msg",
				err:    err,
				caller: &identity.Summary{ID: "u1", Email: "a@x.com"},
				extras: map[string]interface{}{"args": []interface{}{errors.New("other")}},
			},
		},
		{
			name: "maps are merged",
			args: []interface{}{map[string]interface{}{"path": "/api/chat"}, map[string]interface{}{"method": "POST"}, 42},
			want: entry{msg: "msg", extras: map[string]interface{}{"path": "/api/chat", "method": "POST", "args": []interface{}{42}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newEntry("msg", tt.args)
			assert.Equal(t, tt.want.msg, got.msg)
			assert.Equal(t, tt.want.err, got.err)
			assert.Equal(t, tt.want.caller, got.caller)
			if _, ok := tt.want.extras["args"]; ok {
				assert.Len(t, got.extras["args"], len(tt.want.extras["args"].([]interface{})))
				delete(tt.want.extras, "args")
				delete(got.extras, "args")
			}
			assert.Equal(t, tt.want.extras, got.extras)
		})
	}
}

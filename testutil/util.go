package testutil

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/cpgs-hub/backend/core"
	"github.com/cpgs-hub/backend/core/identity"
	logsvc "github.com/cpgs-hub/backend/services/logger"
)

// NewConfig returns the TEST config; Rollbar stays disabled.
func NewConfig() *core.Config {
	conf := core.NewConfig()
	conf.Env = "TEST"
	conf.TestMode = true
	conf.Debug = false
	conf.Database.Engine = core.EngineInMem
	return conf
}

// NewLogger returns a logger writing to nowhere.
func NewLogger(conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
}

// NewValidator returns a validator with every domain validator registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	identity.InitValidators(validate, translator)
	return validate, translator
}

func CreateIdentity(
	t *testing.T,
	repo identity.Repository,
	name, email, pwd string,
	role identity.Role,
	createdAt ...time.Time,
) identity.Identity {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	if role == "" {
		role = identity.RoleUser
	}
	usr := identity.Identity{
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateIdentity() failed: %v", err)
		}
	}
	usr, err := repo.CreateIdentity(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateIdentity() failed: %v", err)
	}
	return usr
}

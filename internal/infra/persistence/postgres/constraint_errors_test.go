package postgres

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsUniqueConstraintViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"gorm sentinel", gorm.ErrDuplicatedKey, true},
		{"wrapped gorm sentinel", errors.Wrap(gorm.ErrDuplicatedKey, "create user"), true},
		{
			"raw driver message",
			errors.New(`ERROR: duplicate key value violates unique constraint "users_email_key" (SQLSTATE 23505)`),
			true,
		},
		{"sqlstate only", errors.New("pq: error 23505"), true},
		{"unrelated error", errors.New("connection refused"), false},
		{"not null violation", errors.New("null value in column \"email\" violates not-null constraint (SQLSTATE 23502)"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isUniqueConstraintViolation(tc.err))
		})
	}
}

func TestIsNotNullConstraintViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{
			"raw driver message",
			errors.New(`ERROR: null value in column "email" of relation "users" violates not-null constraint (SQLSTATE 23502)`),
			true,
		},
		{"sqlstate only", errors.New("pq: error 23502"), true},
		{"unique violation", errors.New("duplicate key value violates unique constraint"), false},
		{"unrelated error", errors.New("connection refused"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isNotNullConstraintViolation(tc.err))
		})
	}
}

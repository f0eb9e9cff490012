package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func AssertExpected(t *testing.T, expected, got interface{}) bool {
	t.Helper()
	return assert.Equal(t, expected, got)
}

func AssertLen(t *testing.T, expected int, got interface{}) bool {
	t.Helper()
	return assert.Len(t, got, expected)
}

func AssertTrue(t *testing.T, got bool) bool {
	t.Helper()
	return assert.True(t, got)
}

func AssertFalse(t *testing.T, got bool) bool {
	t.Helper()
	return assert.False(t, got)
}

func AssertError(t *testing.T, err error) bool {
	t.Helper()
	return assert.Error(t, err)
}

func AssertNoError(t *testing.T, err error) bool {
	t.Helper()
	return assert.NoError(t, err)
}

func AssertNil(t *testing.T, got interface{}) bool {
	t.Helper()
	return assert.Nil(t, got)
}

func AssertNotNil(t *testing.T, got interface{}) bool {
	t.Helper()
	return assert.NotNil(t, got)
}

// AssertPanicsWith fails the test right away unless fn panics
// and returns the recovered value otherwise
func AssertPanicsWith(t *testing.T, fn func()) (recovered interface{}) {
	t.Helper()
	require.Panics(t, func() {
		defer func() {
			if recovered = recover(); recovered != nil {
				panic(recovered)
			}
		}()
		fn()
	})
	return recovered
}

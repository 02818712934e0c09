package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeTable(t *testing.T) {
	assert.Equal(t, 200, Success.Code)
	assert.Equal(t, 500, Failed.Code)
	assert.Nil(t, Success.Detail)
	assert.NotEmpty(t, InviteNotExist.Msg)
	assert.NotEqual(t, Success.Code, Unauthorized.Code)
}

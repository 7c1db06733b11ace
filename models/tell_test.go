package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ihsandara/PemBlle/pkg"
)

func TestCreateTellRequestValidate(t *testing.T) {
	cases := []struct {
		name string
		req  CreateTellRequest
		ok   bool
	}{
		{"valid", CreateTellRequest{ReceiverID: "u1", Content: "soru?"}, true},
		{"missing receiver", CreateTellRequest{Content: "soru?"}, false},
		{"empty content", CreateTellRequest{ReceiverID: "u1", Content: ""}, false},
		{"whitespace only", CreateTellRequest{ReceiverID: "u1", Content: "   \n\t "}, false},
		{"at the limit", CreateTellRequest{ReceiverID: "u1", Content: strings.Repeat("a", MaxTellContentLen)}, true},
		{"over the limit", CreateTellRequest{ReceiverID: "u1", Content: strings.Repeat("a", MaxTellContentLen+1)}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, pkg.ErrValidation)
			}
		})
	}
}

func TestValidateTrimsContent(t *testing.T) {
	req := CreateTellRequest{ReceiverID: "u1", Content: "  soru?  "}
	require.NoError(t, req.Validate())
	assert.Equal(t, "soru?", req.Content)
}

func TestContentLimitCountsRunesNotBytes(t *testing.T) {
	// Çok baytlı karakterler: rune sayısı limitte, bayt sayısı üstünde
	req := CreateTellRequest{ReceiverID: "u1", Content: strings.Repeat("ş", MaxTellContentLen)}
	assert.NoError(t, req.Validate())
}

func TestAnswered(t *testing.T) {
	tell := Tell{ID: "t1"}
	assert.False(t, tell.Answered())

	tell.Answer = &Answer{ID: "a1"}
	assert.True(t, tell.Answered())
}

func TestHasReply(t *testing.T) {
	a := Answer{Replies: []Reply{{ID: "r1"}, {ID: "r2"}}}
	assert.True(t, a.HasReply("r1"))
	assert.False(t, a.HasReply("r9"))

	var empty Answer
	assert.False(t, empty.HasReply("r1"))
}

package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	appcontact "github.com/portfolio/backend/internal/application/contact"
	"github.com/portfolio/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The documented envelopes must decode what the handlers actually write.
func TestDocumentedEnvelopes_MatchResponses(t *testing.T) {
	_, r := newContactRouter(t)

	t.Run("created", func(t *testing.T) {
		w := perform(r, http.MethodPost, "/contact", contactForm())
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp APIResponse[appcontact.SubmitResponse]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.NotEqual(t, uuid.Nil, resp.Data.ID)
		_, err := time.Parse(dto.TimestampLayout, resp.Timestamp)
		assert.NoError(t, err)
	})

	t.Run("paginated list", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/admin/contact-messages", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp APIResponse[[]appcontact.MessageResponse]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Meta)
		assert.Len(t, resp.Data, int(resp.Meta.Total))
	})

	t.Run("validation failure", func(t *testing.T) {
		w := perform(r, http.MethodPost, "/contact", map[string]string{"email": "nope"})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var resp ValidationErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		fields := map[string]bool{}
		for _, f := range resp.Errors {
			fields[f.Field] = true
		}
		assert.True(t, fields["email"])
		assert.True(t, fields["message"])
	})

	t.Run("not found", func(t *testing.T) {
		w := perform(r, http.MethodPatch, "/admin/contact-messages/"+uuid.NewString()+"/read", nil)
		require.Equal(t, http.StatusNotFound, w.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, dto.ErrCodeNotFound, resp.Errors.Code)
		assert.NotEmpty(t, resp.Timestamp)
	})
}

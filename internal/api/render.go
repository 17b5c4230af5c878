package api

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/glossahq/glossa/pkg/errors"
	"github.com/glossahq/glossa/pkg/observability"
)

const contentTypeCBOR = "application/cbor"

// envelope is the wire shape of every response body.
type envelope struct {
	Result interface{}   `json:"result,omitempty" cbor:"result,omitempty"`
	Error  *errors.Error `json:"error,omitempty" cbor:"error,omitempty"`
}

// bind decodes the request body into v, JSON by default and CBOR when the
// Content-Type says so, then runs the binding validators.
func bind(c *gin.Context, v interface{}) error {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return errors.New(400, "Invalid request body: %s", err.Error())
	}
	if c.ContentType() == contentTypeCBOR {
		err = cbor.Unmarshal(data, v)
	} else {
		err = json.Unmarshal(data, v)
	}
	if err != nil {
		return errors.New(400, "Invalid request body: %s", err.Error())
	}
	if binding.Validator != nil {
		if err := binding.Validator.ValidateStruct(v); err != nil {
			return errors.New(400, "%s", err.Error())
		}
	}
	return nil
}

func wantsCBOR(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), contentTypeCBOR)
}

// renderResult writes a 200 success envelope, CBOR-encoded when the client
// accepts it.
func renderResult(c *gin.Context, v interface{}) {
	body := envelope{Result: v}
	if wantsCBOR(c) {
		data, err := cbor.Marshal(body)
		if err != nil {
			renderError(c, errors.New(500, "%s", err.Error()))
			return
		}
		c.Data(200, contentTypeCBOR, data)
		return
	}
	c.JSON(200, body)
}

// renderError writes the error envelope with the error's HTTP status and
// records the failure on the request's log collector.
func renderError(c *gin.Context, err error) {
	he := errors.From(err)
	observability.CtxKV(c.Request.Context()).Set("error", he.Error())

	body := envelope{Error: he}
	if wantsCBOR(c) {
		if data, merr := cbor.Marshal(body); merr == nil {
			c.Data(he.StatusCode(), contentTypeCBOR, data)
			return
		}
	}
	c.JSON(he.StatusCode(), body)
}

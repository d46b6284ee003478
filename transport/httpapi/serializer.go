package httpapi

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// jsonSerializer implements echo.JSONSerializer on json-iterator.
type jsonSerializer struct{}

// Serialize implements echo.JSONSerializer.
func (jsonSerializer) Serialize(c echo.Context, i any, indent string) error {
	encoder := json.NewEncoder(c.Response())
	if indent != "" {
		encoder.SetIndent("", indent)
	}

	return encoder.Encode(i)
}

// Deserialize implements echo.JSONSerializer.
func (jsonSerializer) Deserialize(c echo.Context, i any) error {
	if err := json.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed JSON body").SetInternal(err)
	}

	return nil
}

package bot

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/user/kino-bot-go/internal/model"
)

// For any id-carrying action, Encode followed by ParseCallback must
// return the original action and payload.
func TestProperty_CallbackRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	actionGen := gen.OneConstOf(
		ActionWatchPremiere,
		ActionPremierePrev,
		ActionPremiereNext,
		ActionPremiereMovie,
		ActionPremiereUp,
		ActionPremiereDown,
		ActionPremiereRemove,
		ActionMoviesPage,
		ActionEditMovie,
		ActionEditTitle,
		ActionEditDescription,
		ActionEditCode,
		ActionEditCancel,
		ActionDeleteMovie,
		ActionConfirmDelete,
		ActionStatsMovie,
	)
	idGen := gen.UInt32Range(0, 1000000)

	properties.Property("id actions round-trip through the wire format", prop.ForAll(
		func(action Action, id uint32) bool {
			encoded := Callback{Action: action, ID: uint(id)}.Encode()
			decoded, ok := ParseCallback(encoded)
			return ok && decoded.Action == action && decoded.ID == uint(id)
		},
		actionGen,
		idGen,
	))

	properties.Property("watch actions round-trip any movie code", prop.ForAll(
		func(code string) bool {
			encoded := Callback{Action: ActionWatch, Code: code}.Encode()
			decoded, ok := ParseCallback(encoded)
			return ok && decoded.Action == ActionWatch && decoded.Code == code
		},
		gen.RegexMatch(`[A-Z]{2,4}[0-9]{1,5}`),
	))

	properties.TestingRun(t)
}

// Normalizing a code is idempotent and case-insensitive.
func TestProperty_CodeNormalization(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("normalization is idempotent", prop.ForAll(
		func(code string) bool {
			once := model.NormalizeCode(code)
			return model.NormalizeCode(once) == once
		},
		gen.AnyString(),
	))

	properties.Property("case variants normalize identically", prop.ForAll(
		func(code string) bool {
			lower := model.NormalizeCode(strings.ToLower(code))
			upper := model.NormalizeCode(strings.ToUpper(code))
			return lower == upper && model.NormalizeCode("  "+code+"  ") == model.NormalizeCode(code)
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

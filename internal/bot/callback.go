package bot

import (
	"fmt"
	"strconv"
	"strings"
)

// Action identifies an inline-keyboard callback intent.
type Action string

const (
	ActionCheckSubscription Action = "check_subscription"
	ActionBackToMenu        Action = "back_to_menu"
	ActionNoop              Action = "noop"
	ActionCancelDelete      Action = "cancel_delete"
	ActionCancelEdit        Action = "cancel_edit"

	ActionWatch         Action = "watch"
	ActionWatchPremiere Action = "watch_premiere"
	ActionPremierePrev  Action = "premiere_prev"
	ActionPremiereNext  Action = "premiere_next"
	ActionMoviesPage    Action = "movies_page"

	ActionEditMovie       Action = "edit_movie"
	ActionEditTitle       Action = "edit_title"
	ActionEditDescription Action = "edit_description"
	ActionEditCode        Action = "edit_code"
	ActionEditCancel      Action = "edit_cancel"
	ActionDeleteMovie     Action = "delete_movie"
	ActionConfirmDelete   Action = "confirm_delete"
	ActionStatsMovie      Action = "stats_movie"

	ActionPremiereMovie  Action = "premiere_movie"
	ActionPremiereUp     Action = "premiere_up"
	ActionPremiereDown   Action = "premiere_down"
	ActionPremiereRemove Action = "premiere_remove"
)

// Callback is a decoded inline-keyboard action. ID carries the numeric
// payload (movie id, carousel index or page number); Code carries the
// movie code for ActionWatch.
type Callback struct {
	Action Action
	ID     uint
	Code   string
}

// bare actions carry no payload.
var bareActions = []Action{
	ActionCheckSubscription,
	ActionBackToMenu,
	ActionNoop,
	ActionCancelDelete,
	ActionCancelEdit,
}

// idActions carry a trailing numeric payload. Order matters: longer
// prefixes must come before the prefixes they contain (watch_premiere
// before watch, premiere_movie before premiere_...).
var idActions = []Action{
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
}

// Encode renders the callback in the wire format expected by the
// inline keyboards.
func (c Callback) Encode() string {
	switch c.Action {
	case ActionWatch:
		return fmt.Sprintf("%s_%s", ActionWatch, c.Code)
	default:
		for _, action := range bareActions {
			if c.Action == action {
				return string(c.Action)
			}
		}
		return fmt.Sprintf("%s_%d", c.Action, c.ID)
	}
}

// ParseCallback decodes callback data into a typed action. It returns
// false for data that matches no known pattern.
func ParseCallback(data string) (Callback, bool) {
	for _, action := range bareActions {
		if data == string(action) {
			return Callback{Action: action}, true
		}
	}

	for _, action := range idActions {
		rest, ok := strings.CutPrefix(data, string(action)+"_")
		if !ok {
			continue
		}
		id, err := strconv.ParseUint(rest, 10, 32)
		if err != nil {
			continue
		}
		return Callback{Action: action, ID: uint(id)}, true
	}

	if code, ok := strings.CutPrefix(data, string(ActionWatch)+"_"); ok && code != "" {
		return Callback{Action: ActionWatch, Code: code}, true
	}

	return Callback{}, false
}

package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCallback(t *testing.T) {
	tests := []struct {
		data string
		want Callback
		ok   bool
	}{
		{"check_subscription", Callback{Action: ActionCheckSubscription}, true},
		{"back_to_menu", Callback{Action: ActionBackToMenu}, true},
		{"noop", Callback{Action: ActionNoop}, true},
		{"cancel_delete", Callback{Action: ActionCancelDelete}, true},
		{"cancel_edit", Callback{Action: ActionCancelEdit}, true},
		{"watch_premiere_42", Callback{Action: ActionWatchPremiere, ID: 42}, true},
		{"watch_KN001", Callback{Action: ActionWatch, Code: "KN001"}, true},
		{"premiere_prev_3", Callback{Action: ActionPremierePrev, ID: 3}, true},
		{"premiere_next_0", Callback{Action: ActionPremiereNext, ID: 0}, true},
		{"premiere_movie_7", Callback{Action: ActionPremiereMovie, ID: 7}, true},
		{"premiere_up_7", Callback{Action: ActionPremiereUp, ID: 7}, true},
		{"premiere_down_7", Callback{Action: ActionPremiereDown, ID: 7}, true},
		{"premiere_remove_7", Callback{Action: ActionPremiereRemove, ID: 7}, true},
		{"movies_page_2", Callback{Action: ActionMoviesPage, ID: 2}, true},
		{"edit_movie_5", Callback{Action: ActionEditMovie, ID: 5}, true},
		{"edit_title_5", Callback{Action: ActionEditTitle, ID: 5}, true},
		{"edit_description_5", Callback{Action: ActionEditDescription, ID: 5}, true},
		{"edit_code_5", Callback{Action: ActionEditCode, ID: 5}, true},
		{"edit_cancel_5", Callback{Action: ActionEditCancel, ID: 5}, true},
		{"delete_movie_5", Callback{Action: ActionDeleteMovie, ID: 5}, true},
		{"confirm_delete_5", Callback{Action: ActionConfirmDelete, ID: 5}, true},
		{"stats_movie_5", Callback{Action: ActionStatsMovie, ID: 5}, true},
		{"", Callback{}, false},
		{"garbage", Callback{}, false},
		{"watch_", Callback{}, false},
		{"movies_page_x", Callback{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			got, ok := ParseCallback(tt.data)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

// Codes that themselves look like other action prefixes must still
// decode as watch actions.
func TestParseCallbackWatchCodeWithPrefix(t *testing.T) {
	got, ok := ParseCallback("watch_premiere_hit")
	assert.True(t, ok)
	assert.Equal(t, Callback{Action: ActionWatch, Code: "premiere_hit"}, got)
}

func TestEncodeCallback(t *testing.T) {
	assert.Equal(t, "check_subscription", Callback{Action: ActionCheckSubscription}.Encode())
	assert.Equal(t, "watch_KN001", Callback{Action: ActionWatch, Code: "KN001"}.Encode())
	assert.Equal(t, "watch_premiere_42", Callback{Action: ActionWatchPremiere, ID: 42}.Encode())
	assert.Equal(t, "movies_page_2", Callback{Action: ActionMoviesPage, ID: 2}.Encode())
	assert.Equal(t, "premiere_remove_9", Callback{Action: ActionPremiereRemove, ID: 9}.Encode())
}

package schedule

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/studyplanner/planner/internal/errors"
	feed "github.com/studyplanner/planner/internal/websocket"
)

// Subscribe listens on the server's change feed at url and refreshes the
// Store on every schedule change, then calls onChange (which may be nil).
// It blocks until ctx is done or the connection drops.
func (s *Store) Subscribe(ctx context.Context, url string, header http.Header, onChange func(feed.Event)) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return errors.BackendUnavailable("connect to change feed", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.BackendUnavailable("change feed closed", err)
		}

		var ev feed.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			s.log.Warn("ignoring malformed feed message", "error", err)
			continue
		}
		if ev.Type != feed.EventScheduleChanged {
			continue
		}

		s.log.Debug("schedule changed on server", "action", ev.Action, "book", ev.BookID, "block", ev.BlockID)
		if err := s.Refresh(ctx); err != nil {
			s.log.Warn("refresh after change failed", "error", err)
			continue
		}
		if onChange != nil {
			onChange(ev)
		}
	}
}

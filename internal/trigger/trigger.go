// Package trigger routes document-creation events to their handlers. The
// event-dispatch runtime (HTTP push or a Pub/Sub subscription) delivers one
// event per created document; handlers are stateless and run independently.
package trigger

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/campuschat/notification-service/internal/domain"
	"github.com/rs/zerolog"
)

// Event is one document-creation (or update) event. Data holds the document
// snapshot and may be empty for skinny events, in which case the handler
// fetches the document from the store. OldData carries the previous snapshot
// on update events.
type Event struct {
	EventID string
	Path    string            // e.g. "announcements/01J8..."
	Params  map[string]string // filled from the matched pattern
	Data    json.RawMessage
	OldData json.RawMessage
}

// HandlerFunc handles one event. A returned error marks the invocation as
// failed so the hosting runtime can apply its own retry policy; recoverable
// conditions (missing author, empty audience) return nil.
type HandlerFunc func(ctx context.Context, ev Event) error

// Markers is the already-notified marker store. MarkIfFirst returns true the
// first time a key is seen; Clear releases a key after a failed attempt so a
// runtime redelivery is not silently swallowed.
type Markers interface {
	MarkIfFirst(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context, key string) error
}

type route struct {
	pattern  string
	segments []string
	handler  HandlerFunc
}

// Registry maps document path patterns to handlers.
type Registry struct {
	routes  []route
	markers Markers // nil disables dedupe
	log     zerolog.Logger
}

func NewRegistry(markers Markers, log zerolog.Logger) *Registry {
	return &Registry{markers: markers, log: log}
}

// OnCreate registers a handler for documents created under the given path
// pattern, e.g. "apps/{appId}/chats/{chatId}/messages/{messageId}". Update
// events arrive on the same route carrying an OldData snapshot.
func (r *Registry) OnCreate(pattern string, h HandlerFunc) {
	r.routes = append(r.routes, route{
		pattern:  pattern,
		segments: strings.Split(pattern, "/"),
		handler:  h,
	})
}

// Dispatch routes one event to its handler. Unmatched paths are a bad
// request; an already-processed document is a logged no-op.
func (r *Registry) Dispatch(ctx context.Context, ev Event) error {
	for _, rt := range r.routes {
		params, ok := match(rt.segments, ev.Path)
		if !ok {
			continue
		}
		ev.Params = params

		log := r.log.With().
			Str("event_id", ev.EventID).
			Str("document", ev.Path).
			Logger()

		if r.markers != nil {
			first, err := r.markers.MarkIfFirst(ctx, ev.Path)
			if err != nil {
				// Marker store trouble must not block delivery.
				log.Warn().Err(err).Msg("marker check failed, proceeding without dedupe")
			} else if !first {
				log.Info().Msg("document already notified, skipping")
				return nil
			}
		}

		if err := rt.handler(log.WithContext(ctx), ev); err != nil {
			if r.markers != nil {
				if cerr := r.markers.Clear(ctx, ev.Path); cerr != nil {
					log.Warn().Err(cerr).Msg("could not clear marker after failure")
				}
			}
			return err
		}
		return nil
	}
	return fmt.Errorf("no handler for document %q: %w", ev.Path, domain.ErrBadRequest)
}

// match compares a pattern's segments against a document path. A "{name}"
// segment captures the corresponding path segment; everything else must be
// an exact match.
func match(pattern []string, path string) (map[string]string, bool) {
	parts := strings.Split(path, "/")
	if len(parts) != len(pattern) {
		return nil, false
	}
	params := map[string]string{}
	for i, seg := range pattern {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			name := seg[1 : len(seg)-1]
			if parts[i] == "" {
				return nil, false
			}
			params[name] = parts[i]
			continue
		}
		if seg != parts[i] {
			return nil, false
		}
	}
	return params, true
}

package snapshot

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"restaurant-floor/internal/common/logger"
	"restaurant-floor/internal/domain"
)

// DocumentRepository persists the raw JSON body of a document under a path.
type DocumentRepository interface {
	Load(ctx context.Context, path string) (body []byte, ok bool, err error)
	Save(ctx context.Context, path string, body []byte) error
}

// Envelope is one broadcast document body.
type Envelope struct {
	Path string
	Body []byte
}

type Broadcaster interface {
	Publish(ctx context.Context, env Envelope) error
	Subscribe(ctx context.Context) (<-chan Envelope, error)
}

// RemoteChannel stores the document in a repository and broadcasts every
// write so other devices pick it up without polling.
type RemoteChannel struct {
	path  string
	repo  DocumentRepository
	bcast Broadcaster
	log   *logger.Logger
}

func NewRemoteChannel(path string, repo DocumentRepository, bcast Broadcaster, log *logger.Logger) *RemoteChannel {
	return &RemoteChannel{path: path, repo: repo, bcast: bcast, log: log}
}

func (r *RemoteChannel) Load(ctx context.Context) (domain.Document, bool, error) {
	body, ok, err := r.repo.Load(ctx, r.path)
	if err != nil || !ok {
		return domain.Document{}, false, err
	}
	var doc domain.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return domain.Document{}, false, errors.Wrapf(err, "decode document %s", r.path)
	}
	r.warnDropped(doc)
	return doc, true, nil
}

// Replace persists first. Once the row is written the document is the
// shared truth, so a failed broadcast is logged rather than returned:
// other devices see the write on their next load.
func (r *RemoteChannel) Replace(ctx context.Context, doc domain.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "encode document")
	}
	if err := r.repo.Save(ctx, r.path, body); err != nil {
		return err
	}
	if err := r.bcast.Publish(ctx, Envelope{Path: r.path, Body: body}); err != nil {
		r.log.Warn("broadcast_failed", err, map[string]any{"path": r.path, "last_updated": doc.LastUpdated})
	}
	return nil
}

func (r *RemoteChannel) Subscribe(ctx context.Context) (<-chan domain.Document, error) {
	in, err := r.bcast.Subscribe(ctx)
	if err != nil {
		return nil, err
	}
	out := make(chan domain.Document, 1)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case env, ok := <-in:
				if !ok {
					return
				}
				if env.Path != r.path {
					continue
				}
				var doc domain.Document
				if err := json.Unmarshal(env.Body, &doc); err != nil {
					r.log.Warn("snapshot_decode_failed", err, map[string]any{"path": env.Path})
					continue
				}
				r.warnDropped(doc)
				offer(out, doc)
			}
		}
	}()
	return out, nil
}

func (r *RemoteChannel) warnDropped(doc domain.Document) {
	if len(doc.DroppedNotifications) == 0 {
		return
	}
	r.log.Warn("notifications_dropped", errors.New("undecodable notifications"), map[string]any{
		"path":         r.path,
		"ids":          doc.DroppedNotifications,
		"last_updated": doc.LastUpdated,
	})
}

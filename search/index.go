package search

import (
	"context"
	"log/slog"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"

	"chat-shell/domain"
)

// Hit is one search result, rebuilt from stored fields.
type Hit struct {
	MessageID string
	RoomID    string
	SenderID  string
	Content   string
}

// Index maintains a Bluge index over message bodies. Destroyed messages
// are re-indexed with the tombstone so their original content stops
// matching searches.
type Index struct {
	writer *bluge.Writer
	log    *slog.Logger
}

// OpenIndex opens (or creates) the index at the given directory.
func OpenIndex(path string, log *slog.Logger) (*Index, error) {
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(path))
	if err != nil {
		return nil, err
	}
	return &Index{writer: writer, log: log}, nil
}

func (i *Index) Close() error {
	return i.writer.Close()
}

// Add indexes a message, replacing any previous version of the same id.
func (i *Index) Add(roomID uuid.UUID, message domain.Message) error {
	doc := bluge.NewDocument(message.ID.String()).
		AddField(bluge.NewKeywordField("room", roomID.String()).StoreValue()).
		AddField(bluge.NewKeywordField("sender", message.SenderID).StoreValue()).
		AddField(bluge.NewTextField("content", message.Content).StoreValue())

	return i.writer.Update(doc.ID(), doc)
}

// Search runs a parsed query and returns matching messages, best first.
func (i *Index) Search(ctx context.Context, query *Query) ([]Hit, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			i.log.Warn("Failed to close index reader", "err", err)
		}
	}()

	boolean := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(query.Terms).SetField("content"))
	if query.RoomID != "" {
		boolean.AddMust(bluge.NewTermQuery(query.RoomID).SetField("room"))
	}

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(query.Limit, boolean))
	if err != nil {
		return nil, err
	}

	var hits []Hit
	match, err := iterator.Next()
	for err == nil && match != nil {
		var hit Hit
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.MessageID = string(value)
			case "room":
				hit.RoomID = string(value)
			case "sender":
				hit.SenderID = string(value)
			case "content":
				hit.Content = string(value)
			}
			return true
		})
		if visitErr != nil {
			return nil, visitErr
		}
		hits = append(hits, hit)
		match, err = iterator.Next()
	}
	if err != nil {
		return nil, err
	}
	return hits, nil
}

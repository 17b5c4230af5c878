package store

import "context"

// IncrTranslating bumps the translating counters for one group after a
// finished translation job.
func (s *Store) IncrTranslating(ctx context.Context, uid ID, tokens int64) error {
	return s.db.Exec(ctx,
		"UPDATE counter SET translating=translating+1, translating_tokens=translating_tokens+? WHERE uid=?",
		tokens, uid)
}

// IncrEmbedding bumps the embedding counters for one group after a finished
// embedding job.
func (s *Store) IncrEmbedding(ctx context.Context, uid ID, tokens int64) error {
	return s.db.Exec(ctx,
		"UPDATE counter SET embedding=embedding+1, embedding_tokens=embedding_tokens+? WHERE uid=?",
		tokens, uid)
}

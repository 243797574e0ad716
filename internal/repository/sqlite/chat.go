package sqlite

import (
	"context"
	"fmt"

	"github.com/jackgladowsky/tierjobs/pkg/models"
)

func (r *SQLiteRepo) AppendChatMessage(ctx context.Context, m *models.ChatMessage) (int64, error) {
	if m == nil {
		return 0, fmt.Errorf("chat message is nil")
	}
	if m.Created == 0 {
		m.Created = now()
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO chat_messages (session_id, role, content, metadata, created) VALUES (?, ?, ?, ?, ?)`,
		m.SessionID, m.Role, m.Content, m.Metadata, m.Created)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

// ListChatMessages returns the latest `limit` messages of a session in
// chronological order.
func (r *SQLiteRepo) ListChatMessages(ctx context.Context, sessionID string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.conn.QueryRows(ctx, `SELECT id, session_id, role, content, metadata, created FROM chat_messages WHERE session_id = ? ORDER BY created DESC, id DESC LIMIT ?`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.Metadata, &m.Created); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// fetched newest-first; flip to chronological
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}

	return out, nil
}

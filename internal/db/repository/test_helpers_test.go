package repository

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

func uuidFromByte(b byte) pgtype.UUID {
	var arr [16]byte
	arr[15] = b
	return pgtype.UUID{Bytes: arr, Valid: true}
}

func idFromByte(b byte) uuid.UUID {
	return uuid.UUID(uuidFromByte(b).Bytes)
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

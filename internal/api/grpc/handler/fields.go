package handler

import (
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dtroode/signalements-server/internal/docvalue"
	"github.com/dtroode/signalements-server/internal/model"
)

func stringField(in *structpb.Struct, key string) string {
	if in == nil {
		return ""
	}
	v, ok := in.GetFields()[key]
	if !ok {
		return ""
	}
	s, _ := docvalue.String(v.AsInterface())
	return s
}

func int64Field(in *structpb.Struct, key string) (int64, bool) {
	if in == nil {
		return 0, false
	}
	v, ok := in.GetFields()[key]
	if !ok {
		return 0, false
	}
	return docvalue.Int64(v.AsInterface())
}

func rolesList(roles []string) []any {
	out := make([]any, 0, len(roles))
	for _, r := range roles {
		out = append(out, r)
	}
	return out
}

func newStruct(fields map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal server error")
	}
	return out, nil
}

func sessionStruct(s model.Session) (*structpb.Struct, error) {
	return newStruct(map[string]any{
		"token":     s.Token,
		"expiresAt": s.ExpiresAt.UTC().Format(time.RFC3339),
		"userId":    float64(s.UserID),
		"email":     s.Email,
		"username":  s.Username,
		"roles":     rolesList(s.Roles),
		"mode":      string(s.Mode),
	})
}

func reportStruct(r model.SyncReport) map[string]any {
	collections := make([]any, 0, len(r.Collections))
	for _, c := range r.Collections {
		entry := map[string]any{
			"collection": c.Collection,
			"fetched":    float64(c.Fetched),
			"created":    float64(c.Created),
			"updated":    float64(c.Updated),
			"skipped":    float64(c.Skipped),
			"failed":     float64(c.Failed),
		}
		if c.Error != "" {
			entry["error"] = c.Error
		}
		collections = append(collections, entry)
	}

	out := map[string]any{
		"startedAt":   r.StartedAt.UTC().Format(time.RFC3339Nano),
		"finishedAt":  r.FinishedAt.UTC().Format(time.RFC3339Nano),
		"trigger":     r.Trigger,
		"online":      r.Online,
		"failed":      r.Failed(),
		"collections": collections,
	}
	if r.ArchiveKey != "" {
		out["archiveKey"] = r.ArchiveKey
	}
	return out
}

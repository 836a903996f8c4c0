package weave_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/errors"
	"github.com/stretchr/testify/require"
)

func TestUnixTimeUnmarshal(t *testing.T) {
	cases := map[string]struct {
		json    string
		want    weave.UnixTime
		wantErr *errors.Error
	}{
		"seconds":      {json: `1600000000`, want: 1600000000},
		"rfc3339":      {json: `"2021-03-04T05:06:07Z"`, want: weave.AsUnixTime(time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC))},
		"zero":         {json: `0`, want: 0},
		"before epoch": {json: `-5`, wantErr: errors.ErrInput},
		"not a time":   {json: `"tomorrow"`, wantErr: errors.ErrInput},
		"old rfc3339":  {json: `"1960-01-01T00:00:00Z"`, wantErr: errors.ErrInput},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var got weave.UnixTime
			err := json.Unmarshal([]byte(tc.json), &got)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr == nil {
				require.Equal(t, tc.want, got)
			}
		})
	}
}

func TestUnixDurationUnmarshal(t *testing.T) {
	cases := map[string]struct {
		json    string
		want    weave.UnixDuration
		wantErr *errors.Error
	}{
		"seconds":      {json: `30`, want: 30},
		"string":       {json: `"1m30s"`, want: 90},
		"sub second":   {json: `"1500ms"`, want: 1},
		"not duration": {json: `"soon"`, wantErr: errors.ErrInput},
		"wrong type":   {json: `true`, wantErr: errors.ErrInput},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var got weave.UnixDuration
			err := json.Unmarshal([]byte(tc.json), &got)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr == nil {
				require.Equal(t, tc.want, got)
			}
		})
	}

	raw, err := json.Marshal(weave.UnixDuration(90))
	require.NoError(t, err)
	require.Equal(t, `"1m30s"`, string(raw))
}

func TestExpiration(t *testing.T) {
	now := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	ctx := weave.WithBlockTime(context.Background(), now)

	require.True(t, weave.IsExpired(ctx, weave.AsUnixTime(now)))
	require.True(t, weave.IsExpired(ctx, weave.AsUnixTime(now).Add(-time.Second)))
	require.False(t, weave.IsExpired(ctx, weave.AsUnixTime(now).Add(time.Second)))
	require.True(t, weave.InTheFuture(ctx, weave.AsUnixTime(now).Add(time.Minute)))

	require.Panics(t, func() { weave.IsExpired(context.Background(), 1) })
}

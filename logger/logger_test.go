package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)
	log.Debug("hidden")
	log.With("file", "body.modelbin").Info("imported", "meshes", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug record written at info level", out)
	}
	if !strings.Contains(out, `"file":"body.modelbin"`) || !strings.Contains(out, `"meshes":3`) {
		t.Error("attributes", out)
	}
}

func TestPretty(t *testing.T) {
	var buf bytes.Buffer
	log := Pretty(&buf, slog.LevelDebug).WithGroup("resolver")
	log.Warn("unresolved", "path", `Game:\Media\a b.swatchbin`, "n", 2)

	out := buf.String()
	if !strings.Contains(out, "WARN") || !strings.Contains(out, "unresolved") {
		t.Error("level/message", out)
	}
	if !strings.Contains(out, `resolver.path=`) || !strings.Contains(out, `"Game:\\Media\\a b.swatchbin"`) {
		t.Error("quoted group attribute", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("newline", out)
	}
}

func TestPrettyWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := Pretty(&buf, slog.LevelInfo).With("worker", 1)
	log.Info("a")
	log.Info("b")
	if strings.Count(buf.String(), "worker=") != 2 {
		t.Error("handler attrs", buf.String())
	}
}

func TestForFormat(t *testing.T) {
	var buf bytes.Buffer
	ForFormat("json", &buf, slog.LevelInfo).Info("x")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Error("json", buf.String())
	}
	buf.Reset()
	ForFormat("text", &buf, slog.LevelInfo).Info("x")
	if !strings.Contains(buf.String(), "msg=x") {
		t.Error("text", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug, "WARN": slog.LevelWarn, "warning": slog.LevelWarn,
		"error": slog.LevelError, "info": slog.LevelInfo, "bogus": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Error("ParseLevel", in, got)
		}
	}
}

func TestContext(t *testing.T) {
	l := Discard()
	if FromContext(WithContext(context.Background(), l)) != l {
		t.Error("FromContext")
	}
	if FromContext(context.Background()) == nil {
		t.Error("default logger")
	}
}

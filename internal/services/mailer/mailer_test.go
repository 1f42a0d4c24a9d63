package mailer

import (
	"context"
	"strings"
	"testing"

	"repost/internal/config"
	"repost/internal/logging"
)

func TestUnconfiguredHostReturnsNoop(t *testing.T) {
	cfg := config.Default()
	cfg.Mailer.Host = ""
	service := NewService(&cfg, logging.NewNop())
	if _, ok := service.(noopService); !ok {
		t.Fatalf("expected noop service, got %T", service)
	}
	if err := service.NotifySuccess(context.Background(), Report{}); err != nil {
		t.Fatalf("noop NotifySuccess returned error: %v", err)
	}
	if err := service.SendTest(context.Background()); err != nil {
		t.Fatalf("noop SendTest returned error: %v", err)
	}
}

func TestConfiguredHostReturnsSMTPService(t *testing.T) {
	cfg := config.Default()
	cfg.Mailer.Host = "smtp.example.com"
	cfg.Mailer.From = "bot@example.com"
	cfg.Mailer.To = []string{"ops@example.com"}
	service := NewService(&cfg, logging.NewNop())
	if _, ok := service.(*smtpService); !ok {
		t.Fatalf("expected smtp service, got %T", service)
	}
}

func TestSuccessBody(t *testing.T) {
	body := successBody(Report{
		ItemTitle:        "Original Video",
		DraftTitle:       "新标题",
		DraftDescription: "第一行\n第二行",
		RecordPath:       "/records/20240101-title.txt",
		ArtifactDir:      "/output/title",
	})
	for _, want := range []string{"视频发布成功", "新标题", "Original Video", "/records/20240101-title.txt", "第一行<br>第二行"} {
		if !strings.Contains(body, want) {
			t.Fatalf("success body missing %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "未检测到确认") {
		t.Fatal("plain success body should not carry the soft-success caveat")
	}
}

func TestSoftSuccessBodyCarriesCaveat(t *testing.T) {
	body := successBody(Report{DraftTitle: "标题", SoftSuccess: true})
	if !strings.Contains(body, "未检测到确认") {
		t.Fatalf("soft success body missing caveat:\n%s", body)
	}
	if !strings.Contains(body, "请登录创作平台核实") {
		t.Fatalf("soft success body missing verification hint:\n%s", body)
	}
}

func TestFailureBody(t *testing.T) {
	body := failureBody(Report{
		ItemTitle: "Original Video",
		Stage:     "publish",
		Reason:    "login markers detected",
	})
	for _, want := range []string{"视频发布失败", "publish", "login markers detected", "仍保留在播放列表"} {
		if !strings.Contains(body, want) {
			t.Fatalf("failure body missing %q:\n%s", want, body)
		}
	}
}

func TestBodyEscapesHTML(t *testing.T) {
	body := failureBody(Report{Reason: "<script>alert(1)</script>"})
	if strings.Contains(body, "<script>") {
		t.Fatal("reason should be escaped")
	}
}

func TestBuildMessageHeaders(t *testing.T) {
	msg := string(buildMessage("bot@example.com", []string{"a@example.com", "b@example.com"}, "发布成功", "<p>hi</p>"))
	for _, want := range []string{
		"From: bot@example.com\r\n",
		"To: a@example.com, b@example.com\r\n",
		"Content-Type: text/html; charset=utf-8\r\n",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing header %q:\n%s", want, msg)
		}
	}
	if strings.Contains(msg, "Subject: 发布成功") {
		t.Fatal("non-ascii subject should be MIME encoded")
	}
}

func TestReportHeadline(t *testing.T) {
	if got := (Report{DraftTitle: "draft", ItemTitle: "item"}).headline(); got != "draft" {
		t.Fatalf("expected draft title, got %q", got)
	}
	if got := (Report{ItemTitle: "item"}).headline(); got != "item" {
		t.Fatalf("expected item title, got %q", got)
	}
	if got := (Report{}).headline(); got != "(untitled)" {
		t.Fatalf("expected placeholder, got %q", got)
	}
}

package mailer

import (
	"fmt"
	"html"
	"strings"
	"time"
)

func successBody(report Report) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	if report.SoftSuccess {
		b.WriteString("<h2>视频已提交发布（未检测到确认）</h2>")
		b.WriteString("<p><strong>注意：</strong>发布已提交，但页面未出现成功确认。请登录创作平台核实视频状态。</p>")
	} else {
		b.WriteString("<h2>视频发布成功</h2>")
	}
	writeDetailRows(&b, report)
	if report.DraftDescription != "" {
		b.WriteString("<h3>描述</h3><p>")
		b.WriteString(strings.ReplaceAll(html.EscapeString(report.DraftDescription), "\n", "<br>"))
		b.WriteString("</p>")
	}
	writeFooter(&b)
	b.WriteString("</body></html>")
	return b.String()
}

func failureBody(report Report) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	b.WriteString("<h2>视频发布失败</h2>")
	if report.Stage != "" {
		fmt.Fprintf(&b, "<p>失败阶段: <strong>%s</strong></p>", html.EscapeString(report.Stage))
	}
	if report.Reason != "" {
		fmt.Fprintf(&b, "<p>原因: %s</p>", html.EscapeString(report.Reason))
	}
	writeDetailRows(&b, report)
	b.WriteString("<p>视频仍保留在播放列表中，修复后会自动重试。</p>")
	writeFooter(&b)
	b.WriteString("</body></html>")
	return b.String()
}

func testBody() string {
	return "<html><body><h2>repost notification test</h2>" +
		"<p>If you can read this, SMTP delivery is working.</p></body></html>"
}

func writeDetailRows(b *strings.Builder, report Report) {
	b.WriteString("<table cellpadding=\"4\">")
	row := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		fmt.Fprintf(b, "<tr><td><strong>%s</strong></td><td>%s</td></tr>",
			html.EscapeString(label), html.EscapeString(value))
	}
	row("原视频", report.ItemTitle)
	row("来源", report.SourceURL)
	row("发布标题", report.DraftTitle)
	row("内容记录", report.RecordPath)
	row("素材目录", report.ArtifactDir)
	b.WriteString("</table>")
}

func writeFooter(b *strings.Builder) {
	fmt.Fprintf(b, "<p style=\"color:#888;font-size:12px\">repost · %s</p>",
		time.Now().Format("2006-01-02 15:04:05"))
}

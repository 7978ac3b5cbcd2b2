package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/shinjunhee/portfolio-chatbot/web/internal/config"
	"github.com/shinjunhee/portfolio-chatbot/web/internal/logger"
	"github.com/shinjunhee/portfolio-chatbot/web/internal/model/profile"
	"github.com/shinjunhee/portfolio-chatbot/web/internal/service/backend"
	"github.com/shinjunhee/portfolio-chatbot/web/internal/service/chat"
	"github.com/shinjunhee/portfolio-chatbot/web/internal/tui"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "설정 로드 실패: %v\n", err)
		os.Exit(1)
	}

	backendURL := flag.String("backend", cfg.Backend.URL, "챗봇 백엔드 주소 (/chat 은 자동으로 붙는다)")
	timeout := flag.Duration("timeout", cfg.Backend.Timeout, "백엔드 요청 타임아웃")
	delay := flag.Duration("delay", cfg.Page.DetectionDelay, "회사 감지 안내 메시지 지연")
	markdown := flag.Bool("markdown", true, "봇 답변을 마크다운으로 렌더링")
	logFile := flag.String("log", cfg.Log.File, "로그 파일 경로 (비우면 로그를 끈다)")
	flag.Parse()

	// the terminal belongs to the UI, so logs only go to a file
	logCfg := cfg.Log
	logCfg.File = *logFile
	if logCfg.File == "" {
		logCfg.Level = "disabled"
	}
	logger.Init(logCfg)

	backendCfg := config.BackendConfig{URL: *backendURL, Timeout: *timeout}
	if *timeout <= 0 || *delay < 0 {
		flag.Usage()
		os.Exit(2)
	}

	p, ok := profile.NewMemoryStore(profile.Seed()).Default()
	if !ok {
		fmt.Fprintln(os.Stderr, "프로필이 없습니다")
		os.Exit(1)
	}

	page := chat.NewPage(uuid.NewString(), backend.NewClient(backendCfg), chat.Options{DetectionDelay: *delay})
	defer page.Close()

	log.Info().Str("backend", backendCfg.ChatURL()).Str("page", page.ID()).Msg("terminal chat started")

	start := time.Now()
	program := tea.NewProgram(tui.New(page, p, tui.Options{Markdown: *markdown}), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		page.Close()
		fmt.Fprintf(os.Stderr, "실행 오류: %v\n", err)
		os.Exit(1)
	}

	log.Info().Dur("elapsed", time.Since(start)).Int("messages", len(page.Messages())).Msg("terminal chat closed")
}

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	bm "github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"

	"github.com/verte-zerg/tuidrill/internal/model"
	"github.com/verte-zerg/tuidrill/internal/statsui"
	"github.com/verte-zerg/tuidrill/internal/tui"
)

// GameFactory builds a fresh drill screen for one SSH session.
type GameFactory func(mode model.Mode, opts tui.Options) tea.Model

type sshServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

func isSSHClosed(err error) bool {
	return errors.Is(err, ssh.ErrServerClosed)
}

func (s *Server) newSSHServer() (*ssh.Server, error) {
	if s.cfg.Games == nil {
		return nil, fmt.Errorf("ssh host needs a game factory")
	}
	opts := []ssh.Option{
		wish.WithAddress(s.cfg.SSHAddr),
		wish.WithMiddleware(
			bm.Middleware(s.teaHandler),
			activeterm.Middleware(),
			logging.MiddlewareWithLogger(s.log),
		),
		// input latency matters more than throughput for the drills
		ssh.WrapConn(func(_ ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}
	if s.cfg.HostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(s.cfg.HostKeyPath))
	}
	srv, err := wish.NewServer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create ssh server: %w", err)
	}
	return srv, nil
}

// teaHandler picks the screen from the session command: "aim", "stats" or
// the typing drill by default. The SSH user name is the player name.
func (s *Server) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	user, err := s.svc.EnsureUser(sess.Context(), sess.User())
	if err != nil {
		s.log.Error("ssh player lookup failed", "user", sess.User(), "err", err)
		return errorModel{msg: err.Error()}, nil
	}
	view := ""
	if cmd := sess.Command(); len(cmd) > 0 {
		view = strings.ToLower(cmd[0])
	}
	s.log.Info("ssh session", "user", user.DisplayName, "view", view)

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	switch view {
	case "stats":
		return statsui.NewModel(s.svc, user), opts
	case "aim":
		return s.cfg.Games(model.ModeAim, s.gameOptions(user)), append(opts, tea.WithMouseAllMotion())
	default:
		return s.cfg.Games(model.ModeTyping, s.gameOptions(user)), opts
	}
}

func (s *Server) gameOptions(user model.User) tui.Options {
	return tui.Options{
		User:     user,
		Recorder: s.svc,
		Log:      s.log.With("user", user.DisplayName),
	}
}

// errorModel shows a message and quits on any key.
type errorModel struct {
	msg string
}

func (m errorModel) Init() tea.Cmd { return nil }

func (m errorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); ok {
		return m, tea.Quit
	}
	return m, nil
}

func (m errorModel) View() string {
	return "Error: " + m.msg + "\nPress any key to disconnect.\n"
}

// Package console is the full screen rxadmin console. Key presses and mouse actions
// count as activity for the inactivity monitor; an idle or expired session closes it.
package console

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jrsteele09/rxadmin/inactivity"
	"github.com/jrsteele09/rxadmin/internal/app"
	"github.com/rs/zerolog/log"
)

// Run shows the console until the user quits or is logged out.
func Run(ctx context.Context, a *app.App) error {
	p := tea.NewProgram(NewModel(ctx, appSource{a: a}),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	unsubscribe := a.Monitor.OnLogout(func(reason inactivity.Reason) {
		p.Send(LoggedOutMsg{Reason: reason})
	})
	defer unsubscribe()

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("console failed: %w", err)
	}

	switch final.(Model).Reason() {
	case inactivity.ReasonIdle:
		log.Warn().Dur("timeout", a.Monitor.Timeout()).Msg("Logged out after inactivity")
		fmt.Printf("Logged out after %s without activity.\n", a.Monitor.Timeout())
	case inactivity.ReasonSessionExpired:
		fmt.Println("Your session has expired. Run `rxadmin login` to sign in again.")
	case inactivity.ReasonLogout:
		fmt.Println("Logged out.")
	}
	return nil
}

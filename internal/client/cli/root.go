package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

func (a *App) getStatus() string {
	st := a.store.State()
	switch {
	case !st.IsInitialized:
		return "(checking...)"
	case st.IsAuthenticated && st.User != nil:
		name := st.User.DisplayName
		if name == "" {
			name = st.User.Email
		}
		return fmt.Sprintf("(%s)", name)
	default:
		return "(anonymous)"
	}
}

func (a *App) Root(ctx context.Context) {
	fmt.Println("Welcome to Matchpoint CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

package cmd

import (
	"context"
	"fmt"
)

// RunPasswd changes the device admin password. The current password comes
// from the config's login block.
func RunPasswd(configFile, newPassword string) error {
	return withSession(configFile, func(ctx context.Context, a *app) error {
		if err := a.dev.UpdatePassword(ctx, a.cfg.Login.Password, newPassword); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		fmt.Println("Password updated; update the login block in your config")
		return nil
	})
}

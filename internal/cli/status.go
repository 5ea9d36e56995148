package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/waylis/waycli/internal/api"
	"github.com/waylis/waycli/internal/config"
	"github.com/waylis/waycli/internal/identity"
)

// RunStatus displays the resolved configuration, server reachability
// and the identity token's claims.
func RunStatus(ctx context.Context, cfg *config.Config) {
	cfgPath := config.ConfigPath()

	fmt.Println()
	fmt.Println(TitleStyle.Render(fmt.Sprintf("  %s waycli Status", Logo)))
	fmt.Println()

	fmt.Printf("  %-12s %s  %s\n", "Config", StatusBadge(fileExists(cfgPath)), DimStyle.Render(cfgPath))
	fmt.Printf("  %-12s %s\n", "Server", cfg.ServerURL+cfg.APIPrefix)
	fmt.Printf("  %-12s %d\n", "Page limit", cfg.PageLimit)
	fmt.Println()

	fmt.Println("  " + BoldStyle.Render("Server"))
	client := api.NewClient(cfg.ServerURL, cfg.APIPrefix, "")
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	info, err := client.AppInfo(pingCtx)
	if err != nil {
		fmt.Printf("    %s  unreachable %s\n", StatusBadge(false), DimStyle.Render(err.Error()))
	} else {
		fmt.Printf("    %s  %s\n", StatusBadge(true), info.Name)
		if info.Description != "" {
			fmt.Println("       " + DimStyle.Render(info.Description))
		}
	}
	fmt.Println()

	fmt.Println("  " + BoldStyle.Render("Identity"))
	claims, err := identity.Peek(cfg.IdentityToken)
	switch {
	case err != nil:
		fmt.Printf("    %s  %s\n", StatusBadge(false), DimStyle.Render(err.Error()))
	default:
		fmt.Printf("    %s  %s\n", StatusBadge(!claims.Expired()), claims.Subject)
		if claims.Issuer != "" {
			fmt.Println("       " + DimStyle.Render("issued by "+claims.Issuer))
		}
		if !claims.ExpiresAt.IsZero() {
			label := "expires " + claims.ExpiresAt.Local().Format("2006-01-02 15:04")
			if claims.Expired() {
				label = ErrStyle.Render("expired " + claims.ExpiresAt.Local().Format("2006-01-02 15:04"))
			}
			fmt.Println("       " + DimStyle.Render(label))
		}
	}
	fmt.Println()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

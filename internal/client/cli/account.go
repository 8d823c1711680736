package cli

import (
	"context"
	"strconv"

	"github.com/dmitrijs2005/seowatch/internal/client/models"
)

func (a *App) Register(ctx context.Context, args []string) error {
	if len(args) == 0 || len(args) > 3 {
		return usage("register <user> [email] [plan]")
	}
	email := ""
	if len(args) > 1 {
		email = args[1]
	}
	plan := models.PlanMetered
	if len(args) > 2 {
		p, err := models.ParsePlan(args[2])
		if err != nil {
			return err
		}
		plan = p
	}

	identity, err := a.auth.Register(ctx, args[0], email, plan)
	if err != nil {
		return err
	}
	a.printf("Registered %s on the %s plan.\n", identity.Username, identity.Plan)
	return nil
}

func (a *App) Login(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("login <user>")
	}
	identity, err := a.auth.Login(ctx, args[0])
	if err != nil {
		return err
	}
	a.printf("Logged in as %s.\n", identity.Username)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	a.printf("Logged out. Your data stays on this device.\n")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	identity, err := a.auth.Current(ctx)
	if err != nil {
		return err
	}
	if identity == nil {
		a.printf("Not logged in.\n")
		return nil
	}
	a.printIdentity(identity)
	return nil
}

func (a *App) Plan(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("plan <metered|pro|agency>")
	}
	plan, err := models.ParsePlan(args[0])
	if err != nil {
		return err
	}
	identity, err := a.billing.ChangePlan(ctx, plan)
	if err != nil {
		return err
	}
	a.printf("Plan changed to %s.\n", identity.Plan)
	return nil
}

func (a *App) Buy(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("buy <n>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return usage("buy <n>")
	}
	identity, err := a.billing.BuyCredits(ctx, n)
	if err != nil {
		return err
	}
	a.printf("Bought %d credits, balance %d.\n", n, identity.Credit)
	return nil
}

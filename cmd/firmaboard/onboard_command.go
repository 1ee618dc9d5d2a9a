package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/firmaboard/firmaboard-go/api"
	"github.com/firmaboard/firmaboard-go/assets"
	"github.com/firmaboard/firmaboard-go/guard"
	"github.com/firmaboard/firmaboard-go/onboarding"
)

func (a *app) cmdOnboard(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("onboard", flag.ContinueOnError)
	googleIdentity := flags.Bool("google", false, "identity already established via Google sign-in")
	tenantSlug := flags.String("tenant", "", "tenant slug")
	if err := flags.Parse(args); err != nil {
		return err
	}
	a.enterTenant(*tenantSlug)
	displayBanner()

	options := []onboarding.Option{
		onboarding.WithNotifier(terminalNotifier{}),
		onboarding.WithNavigator(terminalNavigator{}),
		onboarding.WithPathFunc(a.resolver.Path),
	}
	if *googleIdentity {
		// Matches the ?google=1 redirect variant: email and password are
		// already established by the provider.
		a.session.Boot(ctx)
		options = append(options, onboarding.WithGoogleIdentity())
	}
	flow := onboarding.NewFlow(a.client, a.store, a.session, options...)
	flow.OnProgress = func(name string, pct int) {
		fmt.Printf("\r  %s: %3d%%", name, pct)
		if pct >= 100 {
			fmt.Println()
		}
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		switch flow.Step() {
		case onboarding.StepProfile:
			if err := promptProfile(reader, flow); err != nil {
				return err
			}
		case onboarding.StepGoal:
			if err := promptChoice(reader, "Output goal", onboarding.ValidGoals, &flow.Draft.MainOutput); err != nil {
				return err
			}
		case onboarding.StepDataConnection:
			if err := promptDataConnection(reader, flow); err != nil {
				return err
			}
			if flow.Next() {
				return flow.Submit(ctx)
			}
			continue
		}
		flow.Next()
	}
}

func promptProfile(reader *bufio.Reader, flow *onboarding.Flow) error {
	fmt.Println("Step 1/3 — Company profile")
	d := &flow.Draft

	var err error
	if !flow.GoogleIdentity() {
		if d.Email, err = prompt(reader, "Email: "); err != nil {
			return err
		}
		if d.Password, err = prompt(reader, "Password: "); err != nil {
			return err
		}
	}
	if d.FirstName, err = prompt(reader, "First name: "); err != nil {
		return err
	}
	if d.LastName, err = prompt(reader, "Last name: "); err != nil {
		return err
	}
	if d.PhoneNumber, err = prompt(reader, "Phone (+countrycode...): "); err != nil {
		return err
	}
	if d.Address, err = prompt(reader, "Address: "); err != nil {
		return err
	}
	if err = promptChoice(reader, "Role", onboarding.ValidRoles, &d.Role); err != nil {
		return err
	}
	if d.CompanyName, err = prompt(reader, "Company name: "); err != nil {
		return err
	}
	definitions, err := prompt(reader, "Company categories (comma separated): ")
	if err != nil {
		return err
	}
	d.CompanyDefinitions = splitList(definitions)
	return nil
}

func promptDataConnection(reader *bufio.Reader, flow *onboarding.Flow) error {
	fmt.Println("Step 3/3 — Data connection")
	choices := []string{onboarding.ConnectionLiveData, onboarding.ConnectionFileUpload}
	if err := promptChoice(reader, "Data connection", choices, &flow.Draft.DataConnection); err != nil {
		return err
	}
	if flow.Draft.DataConnection != onboarding.ConnectionFileUpload {
		return nil
	}

	if err := promptChoice(reader, "Target table", onboarding.ValidTargetTables, &flow.Draft.TargetTable); err != nil {
		return err
	}
	paths, err := prompt(reader, "Files (comma separated paths): ")
	if err != nil {
		return err
	}
	flow.ClearFiles()
	for _, path := range splitList(paths) {
		file, err := readAttachment(path)
		if err != nil {
			return err
		}
		flow.AttachFile(file)
	}
	return nil
}

func (a *app) cmdAssets(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("assets", flag.ContinueOnError)
	tenantSlug := flags.String("tenant", "", "tenant slug")
	if err := flags.Parse(args); err != nil {
		return err
	}
	a.enterTenant(*tenantSlug)

	a.session.Boot(ctx)
	provider, _ := a.store.Provider()
	decision := guard.Evaluate(a.session.State(), provider, a.resolver.Path, "/dashboard")
	if decision.Action != guard.Render {
		return fmt.Errorf("not signed in (→ %s)", decision.Target)
	}

	list, err := assets.NewService(a.client).List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No assets.")
		return nil
	}
	for _, asset := range list {
		fmt.Printf("%-4d %-24s %-16s %-6s %-12s %s\n",
			asset.ID, asset.Name, asset.Location, asset.Type, asset.Status, asset.Power)
	}
	return nil
}

func (a *app) cmdUpload(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("upload", flag.ContinueOnError)
	table := flags.String("table", "", "target data table")
	tenantSlug := flags.String("tenant", "", "tenant slug")
	if err := flags.Parse(args); err != nil {
		return err
	}
	a.enterTenant(*tenantSlug)

	paths := flags.Args()
	if len(paths) == 0 {
		return fmt.Errorf("no files given")
	}

	succeeded := 0
	for _, path := range paths {
		file, err := readAttachment(path)
		if err != nil {
			return err
		}
		err = a.client.Upload(ctx, api.EndpointUploads, file, *table, func(pct int) {
			fmt.Printf("\r  %s: %3d%%", file.Name, pct)
		})
		fmt.Println()
		if err != nil {
			fmt.Printf("✗ %s: %v\n", file.Name, err)
			continue
		}
		succeeded++
	}
	fmt.Printf("%d of %d file(s) uploaded.\n", succeeded, len(paths))
	return nil
}

func readAttachment(path string) (api.File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return api.File{}, fmt.Errorf("read %s: %w", path, err)
	}
	return api.File{
		Name:        filepath.Base(path),
		ContentType: "application/octet-stream",
		Content:     content,
	}, nil
}

func promptChoice(reader *bufio.Reader, label string, choices []string, out *string) error {
	value, err := prompt(reader, fmt.Sprintf("%s (%s): ", label, strings.Join(choices, ", ")))
	if err != nil {
		return err
	}
	*out = value
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

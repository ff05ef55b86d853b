package main

import (
	"fmt"
	"io"
	"net/http"

	"crudrouter/internal/adapters/driven/filestore"
	"crudrouter/internal/app"
	"crudrouter/internal/config"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the routes generated for the resources file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		resources, err := config.LoadResources(cfg.ResourcesFile)
		if err != nil {
			return err
		}

		return printRoutes(cmd.OutOrStdout(), resources, cfg)
	},
}

var methodColors = map[string]*color.Color{
	http.MethodGet:    color.New(color.FgGreen),
	http.MethodPost:   color.New(color.FgYellow),
	http.MethodPatch:  color.New(color.FgCyan),
	http.MethodDelete: color.New(color.FgRed),
}

// printRoutes lists the mounted routes. Routes do not depend on the backend, so an in-memory
// store stands in for all of them and nothing is connected.
func printRoutes(w io.Writer, resources []config.Resource, cfg *config.Config) error {
	ctor := filestore.NewInMemory().Constructor()
	backends := app.Backends{SQL: ctor, Mongo: ctor, File: ctor}

	a, err := app.NewApp(resources, backends, cfg, zap.NewNop())
	if err != nil {
		return err
	}

	backendOf := make(map[string]string, len(resources))
	for _, res := range resources {
		backendOf[res.MountPath()] = res.Backend
	}

	for _, router := range a.Meta().Routers {
		fmt.Fprintf(w, "%s %s\n", color.New(color.Bold).Sprint(router.Path), color.HiBlackString("(%s)", backendOf[router.Path]))

		for _, route := range router.Routes {
			method := fmt.Sprintf("%-7s", route.Method)
			if c, ok := methodColors[route.Method]; ok {
				method = c.Sprint(method)
			}
			fmt.Fprintf(w, "  %s %s%s\n", method, router.Path, route.Path)
		}
	}
	return nil
}

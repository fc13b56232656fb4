package main

import (
	"fmt"
	"os"
	"os/exec"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/agriconnect-ug/agriconnect/app/repositories"
	"github.com/agriconnect-ug/agriconnect/app/routes"
	"github.com/agriconnect-ug/agriconnect/app/services"
	"github.com/agriconnect-ug/agriconnect/internal/server"
	"github.com/agriconnect-ug/agriconnect/pkg/realtime"
	"github.com/agriconnect-ug/agriconnect/pkg/router"
)

// agriconnect run — start the HTTP + gRPC server.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the HTTP + gRPC server (alias: serve)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start()
	},
}

// agriconnect serve — alias kept for muscle memory.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP + gRPC server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start()
	},
}

// agriconnect route:list — print all registered routes.
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Mounting needs the hub and feed the controllers are built around;
		// neither is started, so nothing connects anywhere.
		hub := realtime.NewHub()
		feed := services.NewLiveFeed(hub, repositories.NewListingRepository())

		r := router.New()
		routes.RegisterAPI(r, routes.Deps{Hub: hub, Feed: feed})

		infos := r.Routes()
		if len(infos) == 0 {
			fmt.Println("The route table is empty.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}

// agriconnect build — compile the server binary.
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the agriconnect binary (outputs ./agriconnect)",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Building agriconnect…")
		c := exec.Command("go", "build", "-o", "agriconnect", "./cmd/agriconnect")
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("build failed: %w", err)
		}
		fmt.Println("✅  Built: ./agriconnect")
		return nil
	},
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/keepmind9/heliumbot/internal/core"
	"github.com/keepmind9/heliumbot/pkg/constants"
	"github.com/spf13/cobra"
)

// Set with -ldflags "-X main.Version=..." at release time
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var versionJSON bool

// VersionOutput describes a heliumbot build and the upstreams it targets
// when the config leaves them unset.
type VersionOutput struct {
	Version    string   `json:"version"`
	Commit     string   `json:"commit"`
	BuiltAt    string   `json:"built_at"`
	GoVersion  string   `json:"go_version"`
	Platforms  []string `json:"platforms"`
	HeliumAPI  string   `json:"helium_api"`
	MemeAPI    string   `json:"meme_api"`
	ImgflipAPI string   `json:"imgflip_api"`
}

func buildInfo() VersionOutput {
	return VersionOutput{
		Version:    Version,
		Commit:     GitCommit,
		BuiltAt:    BuildTime,
		GoVersion:  runtime.Version(),
		Platforms:  core.SupportedBots,
		HeliumAPI:  constants.DefaultHeliumAPIURL,
		MemeAPI:    constants.DefaultMemeAPIURL,
		ImgflipAPI: constants.DefaultImgflipURL,
	}
}

func writeBuildInfo(out io.Writer, info VersionOutput) {
	fmt.Fprintf(out, "heliumbot %s (%s, built %s, %s)\n", info.Version, info.Commit, info.BuiltAt, info.GoVersion)
	fmt.Fprintf(out, "platforms:  %s\n", strings.Join(info.Platforms, ", "))
	fmt.Fprintf(out, "helium api: %s\n", info.HeliumAPI)
	fmt.Fprintf(out, "meme api:   %s\n", info.MemeAPI)
	fmt.Fprintf(out, "templates:  %s\n", info.ImgflipAPI)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show build and upstream API information",
	Long:  "Display the heliumbot build, the chat platforms it supports and the default upstream APIs",
	Run: func(cmd *cobra.Command, args []string) {
		info := buildInfo()
		out := cmd.OutOrStdout()
		if !versionJSON {
			writeBuildInfo(out, info)
			return
		}
		output, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			fmt.Fprintf(out, "{\"error\": \"failed to marshal json: %v\"}\n", err)
			return
		}
		fmt.Fprintln(out, string(output))
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Output in JSON format")
}

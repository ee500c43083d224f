// Copyright (c) The StackShard Authors
// SPDX-License-Identifier: MPL-2.0

package command

import (
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/stackshard/stackshard/internal/artifacts"
	"github.com/stackshard/stackshard/internal/cfntpl"
	"github.com/stackshard/stackshard/internal/diags"
	"github.com/stackshard/stackshard/internal/splitter"
)

// SplitCommand is a Command implementation that splits a template into
// nested stacks and writes the results to disk.
type SplitCommand struct {
	Meta
}

func (c *SplitCommand) Help() string {
	helpText := `
Usage: stackshard split [options] TEMPLATE

  Splits the given CloudFormation-style template (JSON or YAML) into nested
  stacks. Each generated sub-template is written into the artifact directory
  and the updated root template is written to the output path.

Options:

  -out=path           Where to write the updated root template.
                      Defaults to "<artifact-dir>/template.json".

  -artifact-dir=dir   Directory for generated sub-templates. Also embedded
                      in each nested stack's remote location. Defaults to
                      ".stackshard".

  -anchor-type=type   Resource type to partition around. May be repeated.
                      Defaults to the serverless and Lambda function types.

  -bucket=name        Deployment bucket name, or a placeholder token for a
                      later upload step to substitute.

  -disabled           Skip splitting and pass the template through
                      unchanged.
`
	return strings.TrimSpace(helpText)
}

func (c *SplitCommand) Synopsis() string {
	return "Split a template into nested stacks"
}

func (c *SplitCommand) Run(args []string) int {
	cfg := splitter.DefaultConfig()
	cfg.Enabled = true

	var anchorTypes stringListFlag
	var outPath string
	var disabled bool

	flags := flag.NewFlagSet("split", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.StringVar(&outPath, "out", "", "updated template output path")
	flags.StringVar(&cfg.ArtifactDir, "artifact-dir", cfg.ArtifactDir, "artifact directory")
	flags.Var(&anchorTypes, "anchor-type", "anchor resource type")
	flags.StringVar(&cfg.BucketPlaceholder, "bucket", cfg.BucketPlaceholder, "deployment bucket or placeholder")
	flags.BoolVar(&disabled, "disabled", false, "pass the template through unchanged")
	if err := flags.Parse(args); err != nil {
		c.Ui.Error(err.Error())
		return 1
	}
	if len(anchorTypes) > 0 {
		cfg.AnchorTypes = anchorTypes
	}
	cfg.Enabled = !disabled

	if flags.NArg() != 1 {
		c.Ui.Error("The split command expects exactly one template path.")
		c.Ui.Error("")
		c.Ui.Error(c.Help())
		return 1
	}
	templatePath := flags.Arg(0)
	if outPath == "" {
		outPath = filepath.Join(cfg.ArtifactDir, "template.json")
	}

	tpl, err := c.loadTemplate(templatePath)
	if err != nil {
		c.showDiagnostics(diags.Diagnostics{}.Append(err))
		return 1
	}

	result, diagnostics := splitter.Split(tpl, cfg)
	c.showDiagnostics(diagnostics)
	if diagnostics.HasErrors() {
		return 1
	}

	files := make([]artifacts.File, 0, len(result.NestedStacks)+1)
	for _, stack := range result.NestedStacks {
		content, err := artifacts.MarshalTemplate(stack.SubTemplate)
		if err != nil {
			c.Ui.Error(fmt.Sprintf("Failed to serialize %s: %s", stack.FileName, err))
			return 1
		}
		files = append(files, artifacts.File{Name: stack.FileName, Content: content})
	}

	writer := artifacts.Writer{FS: c.FS, Dir: cfg.ArtifactDir}
	if err := writer.WriteAll(files); err != nil {
		c.showDiagnostics(diags.Diagnostics{}.Append(err))
		return 1
	}

	updated, err := artifacts.MarshalTemplate(result.Template)
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Failed to serialize the updated template: %s", err))
		return 1
	}
	if dir := filepath.Dir(outPath); dir != "." {
		if err := c.FS.MkdirAll(dir, 0755); err != nil {
			c.showDiagnostics(diags.Diagnostics{}.Append(err))
			return 1
		}
	}
	if err := c.FS.WriteFile(outPath, updated, 0644); err != nil {
		c.showDiagnostics(diags.Diagnostics{}.Append(err))
		return 1
	}

	if len(result.NestedStacks) == 0 {
		c.Ui.Output("No splitting was necessary; the template was written unchanged.")
	} else {
		c.Ui.Output(fmt.Sprintf("Split %d nested stack(s) into %s; updated template written to %s.",
			len(result.NestedStacks), cfg.ArtifactDir, outPath))
	}
	return 0
}

func (c *SplitCommand) loadTemplate(path string) (*cfntpl.Template, error) {
	src, err := c.FS.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		tpl, err := cfntpl.ParseYAML(src)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		return tpl, nil
	default:
		tpl, err := cfntpl.ParseJSON(src)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		return tpl, nil
	}
}

// stringListFlag collects the values of a repeatable string flag.
type stringListFlag []string

func (f *stringListFlag) String() string {
	return strings.Join(*f, ", ")
}

func (f *stringListFlag) Set(value string) error {
	*f = append(*f, value)
	return nil
}

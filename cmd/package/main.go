package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/prognoshealth/itemcrud/deploy"
)

func main() {
	wd, _ := os.Getwd()

	var (
		baseDir  = flag.String("base", wd, "Project directory holding src/ and dist/")
		lambda   = flag.String("lambda", "", "Directory to zip, defaults to <base>/src/lambda")
		template = flag.String("template", "", "Site template, defaults to <base>/src/site/index.html")
		dist     = flag.String("dist", "", "Output directory, defaults to <base>/dist")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	absBase, err := filepath.Abs(*baseDir)
	if err != nil {
		logger.WithError(err).Fatal("Failed to get absolute base path")
	}

	layout := deploy.DefaultLayout(absBase)
	if *lambda != "" {
		layout.LambdaDir = *lambda
	}
	if *template != "" {
		layout.SiteTemplate = *template
	}
	if *dist != "" {
		layout.DistDir = *dist
	}

	logger.WithFields(logrus.Fields{
		"lambda":   layout.LambdaDir,
		"template": layout.SiteTemplate,
		"dist":     layout.DistDir,
	}).Debug("Preparing deployment")

	if err := deploy.Prepare(layout, logger); err != nil {
		logger.WithError(err).Fatal("Deployment preparation failed")
	}
}

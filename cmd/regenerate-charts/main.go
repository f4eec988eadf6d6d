package main

import (
	"cmp"
	"log"
	"os"
	"path/filepath"

	"github.com/laborwatch/cluedash/consts"
	"github.com/laborwatch/cluedash/dashboard"
	"github.com/laborwatch/cluedash/payload"
)

func main() {
	dataFolder := cmp.Or(os.Getenv("DATA_FOLDER"), ".")
	payloadFile := filepath.Join(dataFolder, consts.PayloadFile)
	chartDataDir := filepath.Join(dataFolder, "chartdata")

	p, err := payload.Load(payloadFile)
	if err != nil {
		log.Fatalf("Error loading %s: %v", payloadFile, err)
	}
	d, err := dashboard.Render(p)
	if err != nil {
		log.Fatalf("Error rendering dashboard: %v", err)
	}
	defer d.Destroy()

	log.Printf("Generating %s in %s", consts.ChartsJSONFile, chartDataDir)
	if _, err := d.Charts.ExportJSON(chartDataDir); err != nil {
		log.Fatalf("Error exporting charts JSON: %v", err)
	}
	log.Printf("Charts JSON generated successfully (%d charts)", d.Charts.Len())
}

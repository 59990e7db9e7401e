package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ironsheep/cvdata-tools/internal/config"
	"github.com/ironsheep/cvdata-tools/internal/cvat"
	"github.com/ironsheep/cvdata-tools/internal/imaging"
	"github.com/ironsheep/cvdata-tools/internal/labelme"
)

func runCVAT(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("cvat", flag.ExitOnError)
	baseURL := fs.String("base-url", cfg.CVATBaseURL, "base of review links (default: derived from the export)")
	image := fs.String("image", "", "print the review link of this image basename")
	frame := fs.Int("frame", -1, "print the review link of this frame id")
	job := fs.Int("job", -1, "print the link of this job id")
	url := fs.Bool("url", false, "print the bare base URL")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return errors.New("usage: cvdata cvat [options] export.xml")
	}
	p, err := cvat.Open(fs.Arg(0), cvat.Options{BaseURL: *baseURL})
	if err != nil {
		return err
	}

	var link string
	switch {
	case *image != "":
		link, err = p.ImageURL(*image)
	case *frame >= 0:
		link, err = p.FrameURL(*frame)
	case *job >= 0:
		link = p.JobURL(*job)
	case *url:
		link = p.URL()
	default:
		return printJSON(map[string]interface{}{
			"name":      p.Name(),
			"task_id":   p.TaskID(),
			"task_name": p.TaskName(),
			"url":       p.URL(),
			"segments":  p.Segments(),
			"stats":     p.Stats(),
		})
	}
	if err != nil {
		return err
	}
	fmt.Println(link)
	return nil
}

type labelMeSummary struct {
	Path     string   `json:"path"`
	Image    string   `json:"image"`
	Width    int      `json:"width"`
	Height   int      `json:"height"`
	Labels   []string `json:"labels"`
	Polygons int      `json:"polygons"`
	Mask     string   `json:"mask,omitempty"`
}

func runLabelMe(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("labelme", flag.ExitOnError)
	maskDir := fs.String("mask-dir", "", "write a PNG polygon mask per file into this directory")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return errors.New("usage: cvdata labelme [options] file.json|dir")
	}

	var anns []*labelme.Annotation
	if st, err := os.Stat(fs.Arg(0)); err != nil {
		return err
	} else if st.IsDir() {
		if anns, err = labelme.Scan(fs.Arg(0)); err != nil {
			return err
		}
	} else {
		ann, err := labelme.Open(fs.Arg(0))
		if err != nil {
			return err
		}
		anns = append(anns, ann)
	}

	out := make([]labelMeSummary, 0, len(anns))
	for _, ann := range anns {
		h, w := ann.ImageSize()
		sum := labelMeSummary{
			Path:     ann.Path,
			Image:    ann.ImagePath,
			Width:    w,
			Height:   h,
			Labels:   ann.LabelNames(),
			Polygons: len(ann.Contours()),
		}
		if *maskDir != "" {
			mask, err := ann.Mask()
			if err != nil {
				log.WithField("path", ann.Path).Warn(err)
			} else {
				stem := strings.TrimSuffix(filepath.Base(ann.Path), filepath.Ext(ann.Path))
				sum.Mask = filepath.Join(*maskDir, stem+".png")
				if err := imaging.Save(mask, sum.Mask); err != nil {
					return fmt.Errorf("failed to write mask: %w", err)
				}
			}
		}
		out = append(out, sum)
	}
	return printJSON(out)
}

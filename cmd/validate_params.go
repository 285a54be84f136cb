package cmd

import (
	"fmt"
	"os"
	"reflect"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/streamglitch/glitcher/internal/h264"
)

var (
	validateParamsJSON bool
	validateParamsDiff bool
)

// validateParamsCmd recovers the original's validate_video_parameters
// tool: it loads a reference .h264 file's first SPS/PPS, warns about
// the known frame_num-width assumption this system makes, then checks
// every candidate file's SPS/PPS against the reference for an exact
// structural match.
var validateParamsCmd = &cobra.Command{
	Use:   "validate-params <reference.h264> <candidate.h264>...",
	Short: "Check candidate videos' SPS/PPS against a reference for frame_num-rewriting compatibility.",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runValidateParams,
}

func init() {
	validateParamsCmd.Flags().BoolVar(&validateParamsJSON, "json", false, "emit results as JSON instead of text")
	validateParamsCmd.Flags().BoolVar(&validateParamsDiff, "diff", false, "colorize the compatibility status and warnings (ignored with --json)")
}

type paramReport struct {
	Candidate  string   `json:"candidate"`
	Compatible bool     `json:"compatible"`
	Warnings   []string `json:"warnings,omitempty"`
}

func runValidateParams(cmd *cobra.Command, args []string) error {
	refPath, candidates := args[0], args[1:]

	refSPS, refPPS, err := firstSPSPPS(refPath)
	if err != nil {
		return fmt.Errorf("reading reference %s: %w", refPath, err)
	}

	reports := make([]paramReport, 0, len(candidates))
	incompatible := 0
	for _, c := range candidates {
		r := checkCandidate(refSPS, refPPS, c)
		if !r.Compatible {
			incompatible++
		}
		reports = append(reports, r)
	}

	if validateParamsJSON {
		return printParamsJSON(reports)
	}
	printParamsText(refSPS, reports)
	if incompatible > 0 {
		return fmt.Errorf("%d of %d candidate(s) incompatible with reference", incompatible, len(candidates))
	}
	return nil
}

// checkCandidate loads candidate's SPS/PPS and compares them against
// the reference for an exact structural match. Any parse failure is
// itself reported as incompatible rather than aborting the whole run,
// so one bad candidate file doesn't stop the rest from being checked.
func checkCandidate(refSPS *h264.SPS, refPPS *h264.PPS, candidate string) paramReport {
	r := paramReport{Candidate: candidate}
	sps, pps, err := firstSPSPPS(candidate)
	if err != nil {
		r.Warnings = append(r.Warnings, fmt.Sprintf("parse error: %v", err))
		return r
	}
	if !reflect.DeepEqual(refSPS, sps) {
		r.Warnings = append(r.Warnings, "SPS differs from reference")
	}
	if !reflect.DeepEqual(refPPS, pps) {
		r.Warnings = append(r.Warnings, "PPS differs from reference")
	}
	r.Compatible = len(r.Warnings) == 0
	return r
}

// firstSPSPPS scans path for its first SPS and PPS NAL units.
func firstSPSPPS(path string) (*h264.SPS, *h264.PPS, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	var sps *h264.SPS
	var pps *h264.PPS
	scanner := h264.NewNALScanner(f)
	for scanner.Scan() && (sps == nil || pps == nil) {
		nal, err := h264.DecodeNAL(scanner.Bytes())
		if err != nil {
			continue
		}
		switch nal.NalUnitType {
		case h264.NALSPS:
			if sps == nil {
				sps, err = h264.ReadSPS(nal.RBSP)
				if err != nil {
					return nil, nil, err
				}
			}
		case h264.NALPPS:
			if pps == nil {
				pps, err = h264.ReadPPS(nal.RBSP)
				if err != nil {
					return nil, nil, err
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	if sps == nil {
		return nil, nil, fmt.Errorf("no SPS found in %s", path)
	}
	if pps == nil {
		return nil, nil, fmt.Errorf("no PPS found in %s", path)
	}
	return sps, pps, nil
}

// checkAssumptions warns about the known frame_num-rewriting
// limitations this system carries: separate_colour_plane_flag support
// is untested, and log2_max_frame_num_minus4 != 0 only matters insofar
// as SliceHeader already derives the width per-SPS rather than
// assuming a fixed constant.
func checkAssumptions(sps *h264.SPS) []string {
	var warnings []string
	if sps.SeparateColourPlaneFlag {
		warnings = append(warnings, "separate_colour_plane_flag is set; frame_num rewriting is untested against per-plane slice headers")
	}
	if sps.Log2MaxFrameNumMinus4 != 0 {
		warnings = append(warnings, fmt.Sprintf("log2_max_frame_num_minus4=%d (frame_num width %d bits, not the common 4)", sps.Log2MaxFrameNumMinus4, sps.FrameNumBits()))
	}
	return warnings
}

func printParamsJSON(reports []paramReport) error {
	out, err := jsoniter.MarshalIndent(reports, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func printParamsText(refSPS *h264.SPS, reports []paramReport) {
	for _, w := range checkAssumptions(refSPS) {
		fmt.Println(colorWarn(w))
	}
	for _, r := range reports {
		status := "incompatible"
		if r.Compatible {
			status = "compatible"
		}
		if validateParamsDiff {
			if r.Compatible {
				status = color.GreenString(status)
			} else {
				status = color.RedString(status)
			}
		}
		fmt.Printf("%s: %s\n", r.Candidate, status)
		for _, w := range r.Warnings {
			fmt.Printf("  - %s\n", w)
		}
	}
}

func colorWarn(msg string) string {
	if !validateParamsDiff {
		return "warning: " + msg
	}
	return color.YellowString("warning: ") + msg
}

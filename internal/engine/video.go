package engine

import (
	"github.com/streamglitch/glitcher/internal/h264"
	"github.com/streamglitch/glitcher/internal/videocache"
)

// parsedVideo is a Video plus the SPS/PPS needed to rewrite frame_num
// on its slice NALs. Playback indexes video.NALs directly: the data
// model's LoadedVideo is the full ordered NAL sequence (SPS, PPS, SEI,
// AUD and slices alike), not a picture-only subsequence, and
// current_frame in the per-tick algorithm indexes that full sequence.
type parsedVideo struct {
	video *videocache.Video
	sps   *h264.SPS
	pps   *h264.PPS
}

// parseVideo extracts the first SPS/PPS from v. A video with no
// SPS/PPS pair can still be played back unrewritten (rewriteFrameNums
// forced off for it).
func parseVideo(v *videocache.Video) (*parsedVideo, error) {
	pv := &parsedVideo{video: v}
	for _, n := range v.NALs {
		switch {
		case n.NalUnitType == h264.NALSPS && pv.sps == nil:
			sps, err := h264.ReadSPS(n.RBSP)
			if err == nil {
				pv.sps = sps
			}
		case n.NalUnitType == h264.NALPPS && pv.pps == nil:
			pps, err := h264.ReadPPS(n.RBSP)
			if err == nil {
				pv.pps = pps
			}
		}
	}
	return pv, nil
}

// totalFrames is the length of the full NAL sequence that loop_range,
// short_loop and playhead fractions are expressed against.
func (pv *parsedVideo) totalFrames() int { return len(pv.video.NALs) }

// canRewrite reports whether this video's SPS/PPS were both
// recognised, a prerequisite for per-frame frame_num rewriting.
func (pv *parsedVideo) canRewrite() bool { return pv.sps != nil && pv.pps != nil }

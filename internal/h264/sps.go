package h264

// profilesWithChromaInfo lists profile_idc values whose SPS carries
// the chroma_format_idc / bit depth / scaling-matrix syntax block
// (Table 7-1's "high profile family").
var profilesWithChromaInfo = map[uint8]bool{
	100: true, 110: true, 122: true, 244: true, 44: true,
	83: true, 86: true, 118: true, 128: true, 138: true,
	139: true, 134: true, 135: true,
}

// PicOrderCntType tags the subset of pic_order_cnt_type values this
// parser supports: Type0 carries log2_max_pic_order_cnt_lsb_minus4,
// Type2 carries nothing further. Type1 is rejected as Unimplemented.
type PicOrderCntType struct {
	Type                           uint8
	Log2MaxPicOrderCntLsbMinus4    uint32 // valid only when Type == 0
}

// FrameCropOffsets holds the four crop-rectangle offsets in frame_crop
// units, present only when frame_cropping_flag is set.
type FrameCropOffsets struct {
	Left, Right, Top, Bottom uint32
}

type HRDParameters struct {
	CpbCnt                              uint32
	BitRateScale                        uint32
	CpbSizeScale                        uint32
	BitRateValueMinus1                  []uint32
	CpbSizeValueMinus1                  []uint32
	CbrFlag                             []bool
	InitialCpbRemovalDelayLengthMinus1  uint32
	CpbRemovalDelayLengthMinus1         uint32
	DpbOutputDelayLengthMinus1          uint32
	TimeOffsetLength                    uint32
}

type VideoSignalType struct {
	VideoFormat              uint32
	VideoFullRangeFlag       bool
	ColourDescriptionPresent bool
	ColourPrimaries          uint32
	TransferCharacteristics  uint32
	MatrixCoefficients       uint32
}

type ChromaLocInfo struct {
	ChromaSampleLocTypeTopField    uint32
	ChromaSampleLocTypeBottomField uint32
}

type TimingInfo struct {
	NumUnitsInTick   uint32
	TimeScale        uint32
	FixedFrameRateFlag bool
}

type BitstreamRestriction struct {
	MotionVectorsOverPicBoundariesFlag bool
	MaxBytesPerPicDenom                uint32
	MaxBitsPerMbDenom                  uint32
	Log2MaxMvLengthHorizontal          uint32
	Log2MaxMvLengthVertical            uint32
	MaxNumReorderFrames                uint32
	MaxDecFrameBuffering                uint32
}

type VUIParameters struct {
	AspectRatioInfoPresent   bool
	AspectRatioIdc           uint32
	OverscanInfoPresent      bool
	OverscanAppropriateFlag  bool
	VideoSignalTypePresent   bool
	VideoSignalType          VideoSignalType
	ChromaLocInfoPresent     bool
	ChromaLocInfo            ChromaLocInfo
	TimingInfoPresent        bool
	TimingInfo               TimingInfo
	NALHRDPresent            bool
	NALHRD                   HRDParameters
	VCLHRDPresent            bool
	VCLHRD                   HRDParameters
	LowDelayHRDFlag          bool
	PicStructPresentFlag     bool
	BitstreamRestrictionPresent bool
	BitstreamRestriction     BitstreamRestriction
}

// SPS is the subset of sequence-parameter-set fields needed to diff
// cross-stream compatibility and to know the bit width of frame_num.
type SPS struct {
	ProfileIdc                        uint8
	ConstraintSet0Flag                bool
	ConstraintSet1Flag                bool
	ConstraintSet2Flag                bool
	ConstraintSet3Flag                bool
	ConstraintSet4Flag                bool
	ConstraintSet5Flag                bool
	LevelIdc                           uint8
	SeqParameterSetID                  uint32
	ChromaFormatIdc                    uint32 // default 1 when absent
	SeparateColourPlaneFlag            bool
	BitDepthLumaMinus8                 uint32
	BitDepthChromaMinus8                uint32
	QpprimeYZeroTransformBypassFlag    bool
	Log2MaxFrameNumMinus4               uint32
	PicOrderCntType                    PicOrderCntType
	MaxNumRefFrames                    uint32
	GapsInFrameNumValueAllowedFlag     bool
	PicWidthInMbsMinus1                uint32
	PicHeightInMapUnitsMinus1          uint32
	FrameMbsOnlyFlag                   bool
	MbAdaptiveFrameFieldFlag           bool
	Direct8x8InferenceFlag             bool
	FrameCropOffsets                   *FrameCropOffsets
	VUI                                *VUIParameters
}

// FrameNumBits returns the bit width of slice_header.frame_num for
// this SPS.
func (s *SPS) FrameNumBits() int {
	return int(s.Log2MaxFrameNumMinus4) + 4
}

// ReadSPS parses an SPS RBSP payload.
func ReadSPS(rbsp []byte) (*SPS, error) {
	r := NewBitReader(rbsp)
	s := &SPS{}

	profileIdc, err := r.ReadBits(8)
	if err != nil {
		return nil, err
	}
	s.ProfileIdc = uint8(profileIdc)

	flags, err := r.ReadBits(8)
	if err != nil {
		return nil, err
	}
	s.ConstraintSet0Flag = flags&0x80 != 0
	s.ConstraintSet1Flag = flags&0x40 != 0
	s.ConstraintSet2Flag = flags&0x20 != 0
	s.ConstraintSet3Flag = flags&0x10 != 0
	s.ConstraintSet4Flag = flags&0x08 != 0
	s.ConstraintSet5Flag = flags&0x04 != 0
	// remaining 2 bits are reserved_zero_2bits, ignored.

	levelIdc, err := r.ReadBits(8)
	if err != nil {
		return nil, err
	}
	s.LevelIdc = uint8(levelIdc)

	if s.SeqParameterSetID, err = r.ReadUE(); err != nil {
		return nil, err
	}

	s.ChromaFormatIdc = 1
	if profilesWithChromaInfo[s.ProfileIdc] {
		if s.ChromaFormatIdc, err = r.ReadUE(); err != nil {
			return nil, err
		}
		if s.ChromaFormatIdc == 3 {
			if s.SeparateColourPlaneFlag, err = r.ReadFlag(); err != nil {
				return nil, err
			}
		}
		if s.BitDepthLumaMinus8, err = r.ReadUE(); err != nil {
			return nil, err
		}
		if s.BitDepthChromaMinus8, err = r.ReadUE(); err != nil {
			return nil, err
		}
		if s.QpprimeYZeroTransformBypassFlag, err = r.ReadFlag(); err != nil {
			return nil, err
		}
		scalingMatrixPresent, err := r.ReadFlag()
		if err != nil {
			return nil, err
		}
		if scalingMatrixPresent {
			return nil, Unimplemented("seq_scaling_matrix_present_flag")
		}
	}

	if s.Log2MaxFrameNumMinus4, err = r.ReadUE(); err != nil {
		return nil, err
	}

	pocType, err := r.ReadUE()
	if err != nil {
		return nil, err
	}
	switch pocType {
	case 0:
		lsb, err := r.ReadUE()
		if err != nil {
			return nil, err
		}
		s.PicOrderCntType = PicOrderCntType{Type: 0, Log2MaxPicOrderCntLsbMinus4: lsb}
	case 1:
		return nil, Unimplemented("pic_order_cnt_type == 1")
	case 2:
		s.PicOrderCntType = PicOrderCntType{Type: 2}
	default:
		return nil, InvalidData("pic_order_cnt_type out of range")
	}

	if s.MaxNumRefFrames, err = r.ReadUE(); err != nil {
		return nil, err
	}
	if s.GapsInFrameNumValueAllowedFlag, err = r.ReadFlag(); err != nil {
		return nil, err
	}
	if s.PicWidthInMbsMinus1, err = r.ReadUE(); err != nil {
		return nil, err
	}
	if s.PicHeightInMapUnitsMinus1, err = r.ReadUE(); err != nil {
		return nil, err
	}
	if s.FrameMbsOnlyFlag, err = r.ReadFlag(); err != nil {
		return nil, err
	}
	if !s.FrameMbsOnlyFlag {
		if s.MbAdaptiveFrameFieldFlag, err = r.ReadFlag(); err != nil {
			return nil, err
		}
	}
	if s.Direct8x8InferenceFlag, err = r.ReadFlag(); err != nil {
		return nil, err
	}

	cropFlag, err := r.ReadFlag()
	if err != nil {
		return nil, err
	}
	if cropFlag {
		c := &FrameCropOffsets{}
		if c.Left, err = r.ReadUE(); err != nil {
			return nil, err
		}
		if c.Right, err = r.ReadUE(); err != nil {
			return nil, err
		}
		if c.Top, err = r.ReadUE(); err != nil {
			return nil, err
		}
		if c.Bottom, err = r.ReadUE(); err != nil {
			return nil, err
		}
		s.FrameCropOffsets = c
	}

	vuiPresent, err := r.ReadFlag()
	if err != nil {
		return nil, err
	}
	if vuiPresent {
		vui, err := readVUI(r)
		if err != nil {
			return nil, err
		}
		s.VUI = vui
	}

	if err := r.ReadRBSPTrailingBits(); err != nil {
		return nil, err
	}
	return s, nil
}

func readVUI(r *BitReader) (*VUIParameters, error) {
	v := &VUIParameters{}
	var err error
	if v.AspectRatioInfoPresent, err = r.ReadFlag(); err != nil {
		return nil, err
	}
	if v.AspectRatioInfoPresent {
		idc, err := r.ReadBits(8)
		if err != nil {
			return nil, err
		}
		v.AspectRatioIdc = idc
		if idc == 255 {
			return nil, Unimplemented("Extended_SAR aspect ratio")
		}
	}
	if v.OverscanInfoPresent, err = r.ReadFlag(); err != nil {
		return nil, err
	}
	if v.OverscanInfoPresent {
		if v.OverscanAppropriateFlag, err = r.ReadFlag(); err != nil {
			return nil, err
		}
	}
	if v.VideoSignalTypePresent, err = r.ReadFlag(); err != nil {
		return nil, err
	}
	if v.VideoSignalTypePresent {
		vf, err := r.ReadBits(3)
		if err != nil {
			return nil, err
		}
		v.VideoSignalType.VideoFormat = vf
		if v.VideoSignalType.VideoFullRangeFlag, err = r.ReadFlag(); err != nil {
			return nil, err
		}
		if v.VideoSignalType.ColourDescriptionPresent, err = r.ReadFlag(); err != nil {
			return nil, err
		}
		if v.VideoSignalType.ColourDescriptionPresent {
			if v.VideoSignalType.ColourPrimaries, err = r.ReadBits(8); err != nil {
				return nil, err
			}
			if v.VideoSignalType.TransferCharacteristics, err = r.ReadBits(8); err != nil {
				return nil, err
			}
			if v.VideoSignalType.MatrixCoefficients, err = r.ReadBits(8); err != nil {
				return nil, err
			}
		}
	}
	if v.ChromaLocInfoPresent, err = r.ReadFlag(); err != nil {
		return nil, err
	}
	if v.ChromaLocInfoPresent {
		if v.ChromaLocInfo.ChromaSampleLocTypeTopField, err = r.ReadUE(); err != nil {
			return nil, err
		}
		if v.ChromaLocInfo.ChromaSampleLocTypeBottomField, err = r.ReadUE(); err != nil {
			return nil, err
		}
	}
	if v.TimingInfoPresent, err = r.ReadFlag(); err != nil {
		return nil, err
	}
	if v.TimingInfoPresent {
		if v.TimingInfo.NumUnitsInTick, err = r.ReadBits(32); err != nil {
			return nil, err
		}
		if v.TimingInfo.TimeScale, err = r.ReadBits(32); err != nil {
			return nil, err
		}
		if v.TimingInfo.FixedFrameRateFlag, err = r.ReadFlag(); err != nil {
			return nil, err
		}
	}
	if v.NALHRDPresent, err = r.ReadFlag(); err != nil {
		return nil, err
	}
	if v.NALHRDPresent {
		hrd, err := readHRD(r)
		if err != nil {
			return nil, err
		}
		v.NALHRD = *hrd
	}
	if v.VCLHRDPresent, err = r.ReadFlag(); err != nil {
		return nil, err
	}
	if v.VCLHRDPresent {
		hrd, err := readHRD(r)
		if err != nil {
			return nil, err
		}
		v.VCLHRD = *hrd
	}
	if v.NALHRDPresent || v.VCLHRDPresent {
		if v.LowDelayHRDFlag, err = r.ReadFlag(); err != nil {
			return nil, err
		}
	}
	if v.PicStructPresentFlag, err = r.ReadFlag(); err != nil {
		return nil, err
	}
	if v.BitstreamRestrictionPresent, err = r.ReadFlag(); err != nil {
		return nil, err
	}
	if v.BitstreamRestrictionPresent {
		b := &v.BitstreamRestriction
		if b.MotionVectorsOverPicBoundariesFlag, err = r.ReadFlag(); err != nil {
			return nil, err
		}
		if b.MaxBytesPerPicDenom, err = r.ReadUE(); err != nil {
			return nil, err
		}
		if b.MaxBitsPerMbDenom, err = r.ReadUE(); err != nil {
			return nil, err
		}
		if b.Log2MaxMvLengthHorizontal, err = r.ReadUE(); err != nil {
			return nil, err
		}
		if b.Log2MaxMvLengthVertical, err = r.ReadUE(); err != nil {
			return nil, err
		}
		if b.MaxNumReorderFrames, err = r.ReadUE(); err != nil {
			return nil, err
		}
		if b.MaxDecFrameBuffering, err = r.ReadUE(); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func readHRD(r *BitReader) (*HRDParameters, error) {
	h := &HRDParameters{}
	cnt, err := r.ReadUE()
	if err != nil {
		return nil, err
	}
	h.CpbCnt = cnt + 1
	if h.BitRateScale, err = r.ReadBits(4); err != nil {
		return nil, err
	}
	if h.CpbSizeScale, err = r.ReadBits(4); err != nil {
		return nil, err
	}
	for i := uint32(0); i < h.CpbCnt; i++ {
		br, err := r.ReadUE()
		if err != nil {
			return nil, err
		}
		cs, err := r.ReadUE()
		if err != nil {
			return nil, err
		}
		cbr, err := r.ReadFlag()
		if err != nil {
			return nil, err
		}
		h.BitRateValueMinus1 = append(h.BitRateValueMinus1, br)
		h.CpbSizeValueMinus1 = append(h.CpbSizeValueMinus1, cs)
		h.CbrFlag = append(h.CbrFlag, cbr)
	}
	if h.InitialCpbRemovalDelayLengthMinus1, err = r.ReadBits(5); err != nil {
		return nil, err
	}
	if h.CpbRemovalDelayLengthMinus1, err = r.ReadBits(5); err != nil {
		return nil, err
	}
	if h.DpbOutputDelayLengthMinus1, err = r.ReadBits(5); err != nil {
		return nil, err
	}
	if h.TimeOffsetLength, err = r.ReadBits(5); err != nil {
		return nil, err
	}
	return h, nil
}

// WriteSPS re-serializes an SPS into an RBSP payload.
func (s *SPS) WriteSPS() []byte {
	w := NewBitWriter()
	w.WriteBits(uint32(s.ProfileIdc), 8)

	var flags uint32
	if s.ConstraintSet0Flag {
		flags |= 0x80
	}
	if s.ConstraintSet1Flag {
		flags |= 0x40
	}
	if s.ConstraintSet2Flag {
		flags |= 0x20
	}
	if s.ConstraintSet3Flag {
		flags |= 0x10
	}
	if s.ConstraintSet4Flag {
		flags |= 0x08
	}
	if s.ConstraintSet5Flag {
		flags |= 0x04
	}
	w.WriteBits(flags, 8)
	w.WriteBits(uint32(s.LevelIdc), 8)
	w.WriteUE(s.SeqParameterSetID)

	if profilesWithChromaInfo[s.ProfileIdc] {
		w.WriteUE(s.ChromaFormatIdc)
		if s.ChromaFormatIdc == 3 {
			w.WriteFlag(s.SeparateColourPlaneFlag)
		}
		w.WriteUE(s.BitDepthLumaMinus8)
		w.WriteUE(s.BitDepthChromaMinus8)
		w.WriteFlag(s.QpprimeYZeroTransformBypassFlag)
		w.WriteFlag(false) // seq_scaling_matrix_present_flag
	}

	w.WriteUE(s.Log2MaxFrameNumMinus4)
	w.WriteUE(uint32(s.PicOrderCntType.Type))
	if s.PicOrderCntType.Type == 0 {
		w.WriteUE(s.PicOrderCntType.Log2MaxPicOrderCntLsbMinus4)
	}
	w.WriteUE(s.MaxNumRefFrames)
	w.WriteFlag(s.GapsInFrameNumValueAllowedFlag)
	w.WriteUE(s.PicWidthInMbsMinus1)
	w.WriteUE(s.PicHeightInMapUnitsMinus1)
	w.WriteFlag(s.FrameMbsOnlyFlag)
	if !s.FrameMbsOnlyFlag {
		w.WriteFlag(s.MbAdaptiveFrameFieldFlag)
	}
	w.WriteFlag(s.Direct8x8InferenceFlag)

	if s.FrameCropOffsets != nil {
		w.WriteFlag(true)
		w.WriteUE(s.FrameCropOffsets.Left)
		w.WriteUE(s.FrameCropOffsets.Right)
		w.WriteUE(s.FrameCropOffsets.Top)
		w.WriteUE(s.FrameCropOffsets.Bottom)
	} else {
		w.WriteFlag(false)
	}

	if s.VUI != nil {
		w.WriteFlag(true)
		writeVUI(w, s.VUI)
	} else {
		w.WriteFlag(false)
	}

	w.WriteRBSPTrailingBits()
	return w.Bytes()
}

func writeVUI(w *BitWriter, v *VUIParameters) {
	w.WriteFlag(v.AspectRatioInfoPresent)
	if v.AspectRatioInfoPresent {
		w.WriteBits(v.AspectRatioIdc, 8)
	}
	w.WriteFlag(v.OverscanInfoPresent)
	if v.OverscanInfoPresent {
		w.WriteFlag(v.OverscanAppropriateFlag)
	}
	w.WriteFlag(v.VideoSignalTypePresent)
	if v.VideoSignalTypePresent {
		w.WriteBits(v.VideoSignalType.VideoFormat, 3)
		w.WriteFlag(v.VideoSignalType.VideoFullRangeFlag)
		w.WriteFlag(v.VideoSignalType.ColourDescriptionPresent)
		if v.VideoSignalType.ColourDescriptionPresent {
			w.WriteBits(v.VideoSignalType.ColourPrimaries, 8)
			w.WriteBits(v.VideoSignalType.TransferCharacteristics, 8)
			w.WriteBits(v.VideoSignalType.MatrixCoefficients, 8)
		}
	}
	w.WriteFlag(v.ChromaLocInfoPresent)
	if v.ChromaLocInfoPresent {
		w.WriteUE(v.ChromaLocInfo.ChromaSampleLocTypeTopField)
		w.WriteUE(v.ChromaLocInfo.ChromaSampleLocTypeBottomField)
	}
	w.WriteFlag(v.TimingInfoPresent)
	if v.TimingInfoPresent {
		w.WriteBits(v.TimingInfo.NumUnitsInTick, 32)
		w.WriteBits(v.TimingInfo.TimeScale, 32)
		w.WriteFlag(v.TimingInfo.FixedFrameRateFlag)
	}
	w.WriteFlag(v.NALHRDPresent)
	if v.NALHRDPresent {
		writeHRD(w, &v.NALHRD)
	}
	w.WriteFlag(v.VCLHRDPresent)
	if v.VCLHRDPresent {
		writeHRD(w, &v.VCLHRD)
	}
	if v.NALHRDPresent || v.VCLHRDPresent {
		w.WriteFlag(v.LowDelayHRDFlag)
	}
	w.WriteFlag(v.PicStructPresentFlag)
	w.WriteFlag(v.BitstreamRestrictionPresent)
	if v.BitstreamRestrictionPresent {
		b := &v.BitstreamRestriction
		w.WriteFlag(b.MotionVectorsOverPicBoundariesFlag)
		w.WriteUE(b.MaxBytesPerPicDenom)
		w.WriteUE(b.MaxBitsPerMbDenom)
		w.WriteUE(b.Log2MaxMvLengthHorizontal)
		w.WriteUE(b.Log2MaxMvLengthVertical)
		w.WriteUE(b.MaxNumReorderFrames)
		w.WriteUE(b.MaxDecFrameBuffering)
	}
}

func writeHRD(w *BitWriter, h *HRDParameters) {
	w.WriteUE(h.CpbCnt - 1)
	w.WriteBits(h.BitRateScale, 4)
	w.WriteBits(h.CpbSizeScale, 4)
	for i := uint32(0); i < h.CpbCnt; i++ {
		w.WriteUE(h.BitRateValueMinus1[i])
		w.WriteUE(h.CpbSizeValueMinus1[i])
		w.WriteFlag(h.CbrFlag[i])
	}
	w.WriteBits(h.InitialCpbRemovalDelayLengthMinus1, 5)
	w.WriteBits(h.CpbRemovalDelayLengthMinus1, 5)
	w.WriteBits(h.DpbOutputDelayLengthMinus1, 5)
	w.WriteBits(h.TimeOffsetLength, 5)
}

package h264

// PPSMoreData holds the extra fields present when more_rbsp_data()
// follows the base picture-parameter-set syntax (transform_8x8 and
// the second chroma QP offset).
type PPSMoreData struct {
	Transform8x8ModeFlag       bool
	SecondChromaQpIndexOffset  int32
}

// PPS is the subset of picture-parameter-set fields this system
// needs.
type PPS struct {
	PicParameterSetID                       uint32
	SeqParameterSetID                       uint32
	EntropyCodingModeFlag                   bool
	BottomFieldPicOrderInFramePresentFlag   bool
	NumRefIdxL0DefaultActiveMinus1          uint32
	NumRefIdxL1DefaultActiveMinus1          uint32
	WeightedPredFlag                        bool
	WeightedBipredIdc                       uint32
	PicInitQpMinus26                        int32
	PicInitQsMinus26                        int32
	ChromaQpIndexOffset                     int32
	DeblockingFilterControlPresentFlag      bool
	ConstrainedIntraPredFlag                bool
	RedundantPicCntPresentFlag              bool
	MoreData                                *PPSMoreData
}

// ReadPPS parses a PPS RBSP payload. Streams using slice groups
// (num_slice_groups_minus1 != 0, FMO) are rejected as Unimplemented.
func ReadPPS(rbsp []byte) (*PPS, error) {
	r := NewBitReader(rbsp)
	p := &PPS{}
	var err error

	if p.PicParameterSetID, err = r.ReadUE(); err != nil {
		return nil, err
	}
	if p.SeqParameterSetID, err = r.ReadUE(); err != nil {
		return nil, err
	}
	if p.EntropyCodingModeFlag, err = r.ReadFlag(); err != nil {
		return nil, err
	}
	if p.BottomFieldPicOrderInFramePresentFlag, err = r.ReadFlag(); err != nil {
		return nil, err
	}
	numSliceGroupsMinus1, err := r.ReadUE()
	if err != nil {
		return nil, err
	}
	if numSliceGroupsMinus1 != 0 {
		return nil, Unimplemented("slice groups (FMO)")
	}
	if p.NumRefIdxL0DefaultActiveMinus1, err = r.ReadUE(); err != nil {
		return nil, err
	}
	if p.NumRefIdxL1DefaultActiveMinus1, err = r.ReadUE(); err != nil {
		return nil, err
	}
	if p.WeightedPredFlag, err = r.ReadFlag(); err != nil {
		return nil, err
	}
	if p.WeightedBipredIdc, err = r.ReadBits(2); err != nil {
		return nil, err
	}
	if p.PicInitQpMinus26, err = r.ReadSE(); err != nil {
		return nil, err
	}
	if p.PicInitQsMinus26, err = r.ReadSE(); err != nil {
		return nil, err
	}
	if p.ChromaQpIndexOffset, err = r.ReadSE(); err != nil {
		return nil, err
	}
	if p.DeblockingFilterControlPresentFlag, err = r.ReadFlag(); err != nil {
		return nil, err
	}
	if p.ConstrainedIntraPredFlag, err = r.ReadFlag(); err != nil {
		return nil, err
	}
	if p.RedundantPicCntPresentFlag, err = r.ReadFlag(); err != nil {
		return nil, err
	}

	if r.MoreRBSPData() {
		m := &PPSMoreData{}
		if m.Transform8x8ModeFlag, err = r.ReadFlag(); err != nil {
			return nil, err
		}
		// pic_scaling_matrix_present_flag: unsupported if set.
		scalingPresent, err := r.ReadFlag()
		if err != nil {
			return nil, err
		}
		if scalingPresent {
			return nil, Unimplemented("pic_scaling_matrix_present_flag")
		}
		if m.SecondChromaQpIndexOffset, err = r.ReadSE(); err != nil {
			return nil, err
		}
		p.MoreData = m
	}

	if err := r.ReadRBSPTrailingBits(); err != nil {
		return nil, err
	}
	return p, nil
}

// WritePPS re-serializes a PPS into an RBSP payload.
func (p *PPS) WritePPS() []byte {
	w := NewBitWriter()
	w.WriteUE(p.PicParameterSetID)
	w.WriteUE(p.SeqParameterSetID)
	w.WriteFlag(p.EntropyCodingModeFlag)
	w.WriteFlag(p.BottomFieldPicOrderInFramePresentFlag)
	w.WriteUE(0) // num_slice_groups_minus1
	w.WriteUE(p.NumRefIdxL0DefaultActiveMinus1)
	w.WriteUE(p.NumRefIdxL1DefaultActiveMinus1)
	w.WriteFlag(p.WeightedPredFlag)
	w.WriteBits(p.WeightedBipredIdc, 2)
	w.WriteSE(p.PicInitQpMinus26)
	w.WriteSE(p.PicInitQsMinus26)
	w.WriteSE(p.ChromaQpIndexOffset)
	w.WriteFlag(p.DeblockingFilterControlPresentFlag)
	w.WriteFlag(p.ConstrainedIntraPredFlag)
	w.WriteFlag(p.RedundantPicCntPresentFlag)

	if p.MoreData != nil {
		w.WriteFlag(p.MoreData.Transform8x8ModeFlag)
		w.WriteFlag(false) // pic_scaling_matrix_present_flag
		w.WriteSE(p.MoreData.SecondChromaQpIndexOffset)
	}

	w.WriteRBSPTrailingBits()
	return w.Bytes()
}

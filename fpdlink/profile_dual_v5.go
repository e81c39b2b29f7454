package fpdlink

import "time"

func init() {
	Register(&Profile{
		Name:         "dual-3400x1300-v5-patgen",
		Description:  "983 CS2 + 984 CS3 Cera build, dual 6.75 Gbps, 3400x1300 DP output at 283.4 MHz",
		Defaults:     Params{PatGen: true, BoardID: 2},
		SelectsBoard: true,
		Build:        buildDualV5,
	})
}

func buildDualV5(a Addresses, p Params) ([]Step, error) {
	return Seq(
		W(Ser, 0x01, 0x02, "Hard Reset"),
		W(Ser, 0x70, a.DesAddr, ""),
		W(Ser, 0x78, a.DesAlias, ""),
		W(Ser, 0x88, 0x00, ""),
		Page(Ser, 0x08, ""),
		Ind(Ser, 0x05, "ndiv=125", 0x7d),
		Page(Ser, 0x08, ""),
		Ind(Ser, 0x06, "ndiv=125", 0x00),
		Page(Ser, 0x09, ""),
		W(Ser, 0x41, 0x04, ""),
		Page(Ser, 0x08, ""),
		Ind(Ser, 0x04, "mash order=0", 0x01),
		Page(Ser, 0x08, ""),
		Ind(Ser, 0x18, "denominator=16777206", 0xf6),
		Page(Ser, 0x08, ""),
		Ind(Ser, 0x19, "denominator=16777206", 0xff),
		Page(Ser, 0x08, ""),
		Ind(Ser, 0x1a, "denominator=16777206", 0xff),
		Page(Ser, 0x08, ""),
		Ind(Ser, 0x1e, "numerator=16777206", 0xf6),
		Page(Ser, 0x08, ""),
		Ind(Ser, 0x1f, "numerator=16777206", 0xff),
		Page(Ser, 0x08, ""),
		Ind(Ser, 0x20, "numerator=16777206", 0xff),
		Page(Ser, 0x09, ""),
		W(Ser, 0x41, 0x13, ""),
		Page(Ser, 0x08, ""),
		Ind(Ser, 0x13, "post_div=1", 0xd0),
		W(Ser, 0x01, 0x30, "FPDTX PLL0123 RESET"),
		Page(Ser, 0x08, ""),
		Ind(Ser, 0x45, "ndiv=125", 0x7d),
		Page(Ser, 0x08, ""),
		Ind(Ser, 0x46, "ndiv=125", 0x00),
		Page(Ser, 0x09, ""),
		W(Ser, 0x41, 0x44, ""),
		Page(Ser, 0x08, ""),
		Ind(Ser, 0x44, "mash order=0", 0x01),
		Page(Ser, 0x08, ""),
		Ind(Ser, 0x58, "denominator=16777206", 0xf6),
		Page(Ser, 0x08, ""),
		Ind(Ser, 0x59, "denominator=16777206", 0xff),
		Page(Ser, 0x08, ""),
		Ind(Ser, 0x5a, "denominator=16777206", 0xff),
		Page(Ser, 0x08, ""),
		Ind(Ser, 0x5e, "numerator=16777206", 0xf6),
		Page(Ser, 0x08, ""),
		Ind(Ser, 0x5f, "numerator=16777206", 0xff),
		Page(Ser, 0x08, ""),
		Ind(Ser, 0x60, "numerator=16777206", 0xff),
		Page(Ser, 0x09, ""),
		W(Ser, 0x41, 0x53, ""),
		Page(Ser, 0x08, ""),
		Ind(Ser, 0x53, "post_div=1", 0xd0),
		W(Ser, 0x01, 0x30, "FPDTX PLL0123 RESET"),
		Ind(Ser, 0x04, "", 0x01),
		Ind(Ser, 0x1e, "", 0x00),
		Ind(Ser, 0x1f, "", 0x00),
		Ind(Ser, 0x20, "", 0x00),
		Ind(Ser, 0x44, "", 0x01),
		Ind(Ser, 0x5e, "", 0x00),
		Ind(Ser, 0x5f, "", 0x00),
		Ind(Ser, 0x60, "", 0x00),
		Ind(Ser, 0x0e, "Select VCO reg; Set VCO", 0xc7),
		Ind(Ser, 0x4e, "Select VCO reg; Set VCO", 0xc7),
		W(Ser, 0x01, 0x30, "soft reset PLL"),
		Page(Ser, 0x08, "Select PLL page"),
		Ind(Ser, 0x1b, "Enable PLL0", 0x00),
		Ind(Ser, 0x5b, "Enable PLL1", 0x00),
		W(Ser, 0x01, 0x01, "soft reset Ser"),
		EnablePassThrough(),
		W(Ser, 0x48, 0x01, "Enable APB Interface"),
		APB(Ser, 0x000, 0x0, "Force HPD low to configure 983 DP settings"),
		APB(Ser, 0x074, 0xa, "Set max advertised link rate = 2.7Gbps"),
		APB(Ser, 0x070, 0x4, "Set max advertised lane count = 4"),
		APB(Ser, 0x214, 0x2, "Request min VOD swing of 0x02"),
		APB(Ser, 0x018, 0x14, "Set SST/MST mode and DP/eDP Mode"),
		APB(Ser, 0x000, 0x1, "Force HPD high to trigger link training"),
		Page(Ser, 0x30, ""),
		Ind(Ser, 0x10, "Write to VID_H_ACTIVE0/1_VP0", 0x48),
		Page(Ser, 0x30, ""),
		Ind(Ser, 0x11, "Write to VID_H_ACTIVE0/1_VP0", 0x0d),
		Page(Ser, 0x30, ""),
		Ind(Ser, 0x12, "Write to VID_H_BACK0/1_VP0", 0x18),
		Page(Ser, 0x30, ""),
		Ind(Ser, 0x13, "Write to VID_H_BACK0/1_VP0", 0x00),
		Page(Ser, 0x30, ""),
		Ind(Ser, 0x14, "Write to VID_H_WIDTH0/1_VP0", 0x20),
		Page(Ser, 0x30, ""),
		Ind(Ser, 0x15, "Write to VID_H_WIDTH0/1_VP0", 0x00),
		Page(Ser, 0x30, ""),
		Ind(Ser, 0x16, "Write to VID_H_TOTAL0/1_VP0", 0xb0),
		Page(Ser, 0x30, ""),
		Ind(Ser, 0x17, "Write to VID_H_TOTAL0/1_VP0", 0x0d),
		Page(Ser, 0x30, ""),
		Ind(Ser, 0x18, "Write to VID_V_ACTIVE0/1_VP0", 0x14),
		Page(Ser, 0x30, ""),
		Ind(Ser, 0x19, "Write to VID_V_ACTIVE0/1_VP0", 0x05),
		Page(Ser, 0x30, ""),
		Ind(Ser, 0x1a, "Write to VID_V_BACK0/1_VP0", 0x21),
		Page(Ser, 0x30, ""),
		Ind(Ser, 0x1b, "Write to VID_V_BACK0/1_VP0", 0x00),
		Page(Ser, 0x30, ""),
		Ind(Ser, 0x1c, "Write to VID_V_WIDTH0/1_VP0", 0x01),
		Page(Ser, 0x30, ""),
		Ind(Ser, 0x1d, "Write to VID_V_WIDTH0/1_VP0", 0x00),
		Page(Ser, 0x30, ""),
		Ind(Ser, 0x1e, "Write to VID_V_FRONT0/1_VP0", 0x0e),
		Page(Ser, 0x30, ""),
		Ind(Ser, 0x1f, "Write to VID_V_FRONT0/1_VP0", 0x00),
		Page(Ser, 0x30, ""),
		Ind(Ser, 0x02, "Write to DP_H_ACTIVE0/1_VP0", 0x48),
		Page(Ser, 0x30, ""),
		Ind(Ser, 0x03, "Write to DP_H_ACTIVE0/1_VP0", 0x0d),
		Page(Ser, 0x30, ""),
		Ind(Ser, 0x23, "Write to PCLK_GEN_M_0/1_VP0", 0xbe),
		Page(Ser, 0x31, ""),
		W(Ser, 0x41, 0x24, ""),
		Page(Ser, 0x30, ""),
		Ind(Ser, 0x24, "Write to PCLK_GEN_M_0/1_VP0", 0x35),
		Page(Ser, 0x31, ""),
		W(Ser, 0x41, 0x25, ""),
		Page(Ser, 0x30, ""),
		Ind(Ser, 0x25, "Write to PCLK_GEN_N_0/1_VP0", 0x0f),
		W(Ser, 0x44, 0x01, "Write bit VP0_ENABLE to VP_ENABLE_REG"),
		Page(Ser, 0x31, ""),
		W(Ser, 0x41, 0x01, ""),
		Page(Ser, 0x30, ""),
		Ind(Ser, 0x01, "Select VP Source 0", 0xa8),
		W(Ser, 0x43, 0x00, "Write bit NUM_VID_STREAMS to VP_CONFIG_REG"),
		Sleep(100*time.Millisecond, ""),
		Page(Ser, 0x30, ""),
		Ind(Ser, 0x29, "Set PATGEN Color Depth to 30bpp for VP0", 0x10),
		W(Ser, RegIndOffset, 0x28, "PATGEN control of VP0"),
		When(p.PatGen, W(Ser, RegIndData, 0x95, "Enable PATGEN on VP0")),
		Page(Des, 0x50, "Select DTG Page"),
		Ind(Des, 0x32, "Hold Port 0 DTG in reset", 0x06),
		Ind(Des, 0x62, "Hold Port 1 DTG in reset", 0x06),
		W(Des, 0x0e, 0x01, "Set read from Port0"),
		Page(Des, 0x50, "Select DTG Page"),
		Ind(Des, 0x20, "Set up DTG BPP, Sync Polarities, and Measurement Type", 0xa3),
		Ind(Des, 0x29, "Set Hstart; Hstart upper byte", 0x80),
		Ind(Des, 0x2a, "Hstart lower byte", 0x38),
		Ind(Des, 0x2f, "Set HSW; HSW upper byte", 0x40),
		Ind(Des, 0x30, "HSW lower byte", 0x20),
		W(Des, 0x0e, 0x01, ""),
		Page(Des, 0x2c, "Select DP Page"),
		Ind(Des, 0x81, "Set DP Rate to 2.7Gbps", 0x60),
		Ind(Des, 0x82, "Enable force DP rate", 0x02),
		Ind(Des, 0x91, "Force 4 lanes", 0x0c),
		Sleep(200*time.Millisecond, ""),
		W(Des, 0x0e, 0x01, "Select Port0 registers"),
		W(Des, 0xb1, 0x01, "Enable clock divider"),
		W(Des, 0xb2, 0x08, "Program M value lower byte"),
		W(Des, 0xb3, 0x53, "Program M value middle byte"),
		W(Des, 0xb4, 0x04, "Program M value upper byte"),
		W(Des, 0xb5, 0xc0, "Program N value lower byte"),
		W(Des, 0xb6, 0x7a, "Program N value middle byte"),
		W(Des, 0xb7, 0x10, "Program N value upper byte"),
		Page(Des, 0x50, "Select DTG Page"),
		Ind(Des, 0x32, "Release Port 0 DTG", 0x04),
		W(Des, 0x48, 0x01, ""),
		APB(Des, 0x1a4, 0x40, "Set bit per color"),
		W(Des, 0x48, 0x01, ""),
		APB(Des, 0x1b8, 0x4, "Set pixel width"),
		W(Des, 0x48, 0x01, ""),
		APB(Des, 0x1ac, 0x865a, "Set DP Mvid"),
		W(Des, 0x48, 0x01, ""),
		APB(Des, 0x1b4, 0x8000, "Set DP Nvid"),
		W(Des, 0x48, 0x01, ""),
		APB(Des, 0x1b0, 0xf3e0040, "Set TU Size"),
		W(Des, 0x48, 0x01, ""),
		APB(Des, 0x1c8, 0x0, "Set TU Mode"),
		W(Des, 0x48, 0x01, ""),
		APB(Des, 0x0c8, 0x1010, "Set FIFO Size"),
		W(Des, 0x48, 0x01, ""),
		APB(Des, 0x1bc, 0xc74, "Set data count"),
		W(Des, 0x48, 0x01, ""),
		APB(Des, 0x1c0, 0x0, "Disable STREAM INTERLACED"),
		W(Des, 0x48, 0x01, ""),
		APB(Des, 0x1c4, 0xf, ""),
		W(Des, 0x48, 0x01, ""),
		APB(Des, 0x084, 0x1, "Enable DP output"),
		Page(Ser, 0x2c, ""),
		Ind(Ser, 0x06, "Write to LINK0_SLOT_REQ0", 0x40),
		Ind(Ser, 0x01, "Write bit LINK0_STREAM_EN0 to LINK0_STREAM_EN", 0x01),
		Ind(Ser, 0x02, "Write bits LINK0_STREAM_MAP0to LINK0_MAP_REG0.0", 0x10),
		Ind(Ser, 0x00, "Set Link Layer 0: True", 0x01),
		Ind(Ser, 0x00, "Enable new Time-slot assignments for Link Layer 0", 0x03),
		W(Ser, 0x70, 0x24, ""),
		W(Ser, 0x78, 0x24, ""),
		W(Ser, 0x17, 0x80, ""),
		W(Ser, 0x18, 0x81, ""),
		W(Ser, 0x07, 0x98, ""),
		W(Ser, 0x71, 0xe0, ""),
		W(Ser, 0x79, 0xe0, ""),
		W(Ser, 0x1d, 0x89, ""),
	), nil
}

package fpdlink

import "time"

func init() {
	Register(&Profile{
		Name:        "dual-3400x1300-v9",
		Description: "983 CS2 + 984 CS3, dual 6.75 Gbps FPD-Link IV, 3400x1300 DP output at a tunable pixel clock",
		Defaults:    Params{DesPCLK: 283, SerPCLK: 283.4, PatGen: true},
		Build:       buildDualV9,
	})
}

func buildDualV9(a Addresses, p Params) ([]Step, error) {
	serVP, err := SerVPMN(p.SerPCLK)
	if err != nil {
		return nil, err
	}
	qpclk, err := DesQuadPixelClock(p.DesPCLK)
	if err != nil {
		return nil, err
	}
	mvid, err := DPMvid(p.DesPCLK)
	if err != nil {
		return nil, err
	}

	return Seq(
		W(Ser, 0x01, 0x02, "Hard Reset"),
		W(Des, 0x01, 0x02, "Hard Reset"),
		W(Ser, 0x70, a.DesAddr, ""),
		W(Ser, 0x78, a.DesAlias, ""),
		W(Ser, 0x88, 0x00, ""),
		W(Ser, 0x5b, 0x23, "Disable FPD3 FIFO pass through"),
		W(Ser, 0x05, 0x28, "Force FPD4_TX dual mode"),
		Page(Ser, 0x08, "Select PLL reg page"),
		Ind(Ser, 0x1b, "Disable PLL0", 0x08),
		Ind(Ser, 0x5b, "Disable PLL1", 0x80),
		W(Ser, 0x02, 0xd1, "Enable mode overwrite"),
		W(Ser, 0x2d, 0x01, ""),
		Page(Ser, 0x24, "Select digital reg page"),
		Page(Ser, 0x08, "Select PLL page"),
		Ind(Ser, 0x05, "Select Ncount Reg; Set Ncount", 0x7d),
		Ind(Ser, 0x13, "Select post div reg; Set post div for 6.75 Gbps", 0x90),
		W(Ser, 0x2d, 0x01, "Select write reg to port 0"),
		W(Ser, 0x6a, 0x0a, "set BC sampling rate"),
		W(Ser, 0x6e, 0x80, "set BC fractional sampling"),
		Ind(Ser, 0x45, "Select Ncount Reg; Set Ncount", 0x7d),
		Ind(Ser, 0x53, "Select post div reg; Set post div for 6.75 Gbps", 0x90),
		W(Ser, 0x2d, 0x12, "Select write reg to port 1"),
		W(Ser, 0x6a, 0x0a, "set BC sampling rate"),
		W(Ser, 0x6e, 0x80, "set BC fractional sampling"),
		W(Ser, 0x02, 0xd1, "Set HALFRATE_MODE"),
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
		W(Des, 0x01, 0x01, "Soft reset Des"),
		Sleep(40*time.Millisecond, ""),
		Page(Ser, 0x2e, "Select Ser link layer"),
		Ind(Ser, 0x00, "refresh time slot", 0x03),
		W(Ser, 0x2d, 0x01, "Select write to port0 reg"),
		W(Ser, 0x48, 0x01, "Enable APB Interface"),
		APB(Ser, 0x000, 0x0, "Force HPD low to configure 983 DP settings"),
		Page(Ser, 0x10, ""),
		Ind(Ser, 0x2f, "", 0x00),
		Ind(Ser, 0x4a, "", 0x00),
		Ind(Ser, 0x4e, "", 0x00),
		Ind(Ser, 0x55, "", 0x00),
		Page(Ser, 0x10, ""),
		Ind(Ser, 0xaf, "", 0x00),
		Ind(Ser, 0xca, "", 0x00),
		Ind(Ser, 0xce, "", 0x00),
		Ind(Ser, 0xd5, "", 0x00),
		Page(Ser, 0x14, ""),
		Ind(Ser, 0x2f, "", 0x00),
		Ind(Ser, 0x4a, "", 0x00),
		Ind(Ser, 0x4e, "", 0x00),
		Ind(Ser, 0x55, "", 0x00),
		Page(Ser, 0x14, ""),
		Ind(Ser, 0xaf, "", 0x00),
		Ind(Ser, 0xca, "", 0x00),
		Ind(Ser, 0xce, "", 0x00),
		Ind(Ser, 0xd5, "", 0x00),
		APB(Ser, 0x074, 0xa, "Set max advertised link rate = 2.7Gbps"),
		APB(Ser, 0x070, 0x4, "Set max advertised lane count = 4"),
		APB(Ser, 0x214, 0x2, "Request min VOD swing of 0x02"),
		APB(Ser, 0x018, 0x14, "Set SST/MST mode and DP/eDP Mode"),
		APB(Ser, 0x000, 0x1, "Force HPD high to trigger link training"),
		VideoInputCheck(),
		Page(Ser, 0x32, ""),
		Ind(Ser, 0x01, "Set VP_SRC_SELECT to Stream 0 for SST Mode", 0xa8),
		Ind(Ser, 0x02, "VID H Active", 0x48, 0x0d),
		Ind(Ser, 0x10, "Horizontal Active; Horizontal Back Porch; Horizontal Sync; Horizontal Total; Vertical Active; Vertical Back Porch; Vertical Sync; Vertical Front Porch", 0x48, 0x0d, 0x18, 0x00, 0x20, 0x00, 0xb0, 0x0d, 0x14, 0x05, 0x21, 0x00, 0x01, 0x00, 0x0e, 0x00),
		Ind(Ser, 0x27, "HSYNC Polarity = +, VSYNC Polarity = +", 0x00),
		W(Ser, 0x41, 0x23, "M/N Register"),
		W(Ser, 0x42, LowerByte(serVP.M), "M value"),
		W(Ser, 0x42, UpperByte(serVP.M), ""),
		W(Ser, 0x42, byte(serVP.N), "N value"),
		W(Ser, 0x43, 0x00, "Set number of VPs used = 1"),
		W(Ser, 0x44, 0x01, "Enable video processors"),
		Page(Ser, 0x30, ""),
		Ind(Ser, 0x29, "Set PATGEN Color Depth to 30bpp for VP0", 0x10),
		W(Ser, RegIndOffset, 0x28, "PATGEN control of VP0"),
		When(p.PatGen, W(Ser, RegIndData, 0x95, "Enable PATGEN on VP0")),
		W(Ser, 0x01, 0x30, "Reset PLLs"),
		Page(Ser, 0x2e, "Link layer Reg page"),
		Ind(Ser, 0x01, "Link layer 0 stream enable", 0x01),
		Ind(Ser, 0x06, "Link layer 0 time slot 0; Link layer 0 time slot", 0x3c),
		Ind(Ser, 0x20, "Set Link layer vp bpp; Set Link layer vp bpp according to VP Bit per pixel", 0x5a),
		Ind(Ser, 0x00, "Link layer 0 enable", 0x03),
		TempCompensation{Baseline: 2, OverrideEfuse: true, Settle: 40 * time.Millisecond}.Steps(),
		ClearCRCErrors(),
		W(Ser, 0x2d, 0x01, ""),
		Page(Des, 0x50, "Select DTG Page"),
		Ind(Des, 0x32, "Hold Port 0 DTG in reset", 0x06),
		Ind(Des, 0x62, "Hold Port 1 DTG in reset", 0x06),
		W(Des, 0x0e, 0x03, "Select both Output Ports"),
		W(Des, 0xd0, 0x00, "Disable FPD4 video forward to Output Port"),
		W(Des, 0xd7, 0x00, "Disable FPD3 video forward to Output Port"),
		Page(Des, 0x2c, "Select DP Page"),
		Ind(Des, 0x81, "Set DP Rate to 2.7Gbps", 0x60),
		Ind(Des, 0x82, "Enable force DP rate", 0x02),
		Ind(Des, 0x91, "Force 4 lanes", 0x0c),
		Page(Des, 0x30, "Disable DP SSCG"),
		Ind(Des, 0x0f, "", 0x01),
		W(Des, 0x01, 0x40, ""),
		W(Des, 0x0e, 0x12, "Select Port 1 registers"),
		W(Des, 0x46, 0x00, "Disable DP Port 1"),
		W(Des, 0x0e, 0x01, "Select Port 0 registers"),
		W(Des, 0x01, 0x40, "DP-TX-PLL RESET Applied"),
		W(Des, 0x0e, 0x03, "Select both Output Ports"),
		W(Des, 0xd0, 0x0c, "Enable FPD_RX video forward to Output Port"),
		W(Des, 0xd1, 0x0f, "Every stream forwarded on DC"),
		W(Des, 0xd6, 0x08, "Send Stream 0 to Output Port 0 and Send Stream 1 to Output Port 1"),
		W(Des, 0xd7, 0x00, "FPD3 mapping disabled"),
		W(Des, 0x0e, 0x01, "Select Port 0"),
		W(Des, 0x0e, 0x01, "Select Port0 registers"),
		W(Des, 0xb1, 0x01, "Enable clock divider"),
		W(Des, 0xb2, LowerByte(qpclk.M), "Program M value lower byte"),
		W(Des, 0xb3, UpperByte(qpclk.M), "Program M value middle byte"),
		W(Des, 0xb4, UpperByte24(qpclk.M), "Program M value upper byte"),
		W(Des, 0xb5, LowerByte(qpclk.N), "Program N value lower byte"),
		W(Des, 0xb6, UpperByte(qpclk.N), "Program N value middle byte"),
		W(Des, 0xb7, UpperByte24(qpclk.N), "Program N value upper byte"),
		W(Des, 0x0e, 0x01, "Select Port 0 registers"),
		Page(Des, 0x50, "Select DTG Page"),
		Ind(Des, 0x20, "Set up DTG BPP, Sync Polarities, and Measurement Type", 0xa3),
		Ind(Des, 0x29, "Set Hstart; Hstart upper byte", 0x80),
		Ind(Des, 0x2a, "Hstart lower byte", 0x38),
		Ind(Des, 0x2f, "Set HSW; HSW upper byte", 0x40),
		Ind(Des, 0x30, "HSW lower byte", 0x20),
		W(Des, 0x48, 0x01, "Enable APB interface"),
		W(Des, 0x48, 0x01, ""),
		APB(Des, 0x1a4, 0x40, "Set bit per color"),
		W(Des, 0x48, 0x01, ""),
		APB(Des, 0x1b8, 0x4, "Set pixel width"),
		APB(Des, 0x1ac, mvid, "Set DP Mvid"),
		W(Des, 0x48, 0x01, ""),
		APB(Des, 0x1b4, 0x8000, "Set DP Nvid"),
		W(Des, 0x48, 0x01, ""),
		APB(Des, 0x1c8, 0x0, "Set TU Mode"),
		W(Des, 0x48, 0x01, ""),
		APB(Des, 0x1b0, 0xf3e0040, "Set TU Size"),
		W(Des, 0x48, 0x01, ""),
		APB(Des, 0x0c8, 0x1010, "Set FIFO Size"),
		W(Des, 0x48, 0x01, ""),
		APB(Des, 0x1bc, 0xc74, "Set data count"),
		W(Des, 0x48, 0x01, ""),
		APB(Des, 0x1c0, 0x0, "Disable STREAM INTERLACED"),
		W(Des, 0x48, 0x01, ""),
		APB(Des, 0x1c4, 0xc, "Set SYNC polarity"),
		Page(Des, 0x50, "Select DTG Page"),
		Ind(Des, 0x32, "Release Port 0 DTG", 0x04),
		Ind(Des, 0x62, "Release Port 1 DTG", 0x04),
		W(Des, 0x48, 0x01, ""),
		APB(Des, 0x180, 0xdb0, "Set Htotal"),
		W(Des, 0x48, 0x01, ""),
		APB(Des, 0x084, 0x1, "Enable DP output"),
		W(Des, 0x01, 0x01, ""),
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

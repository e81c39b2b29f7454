package fpdlink

import "time"

func init() {
	Register(&Profile{
		Name:         "988-11in-nld-patgen",
		Description:  "983 + 988 CS3.0, 11in NLD panel on OLDI",
		Defaults:     Params{PatGen: true, BoardID: 4},
		SelectsBoard: true,
		Build:        buildNLD11in,
	})
}

func buildNLD11in(a Addresses, p Params) ([]Step, error) {
	return Seq(
		W(Ser, 0x70, a.DesAddr, ""),
		W(Ser, 0x78, a.DesAlias, ""),
		W(Ser, 0x88, 0x00, ""),
		Page(Ser, 0x08, "Select PLL reg page"),
		Ind(Ser, 0x1b, "Disable PLL0", 0x08),
		Ind(Ser, 0x5b, "Disable PLL1", 0x08),
		W(Ser, 0x5b, 0x23, "Disable FPD3 FIFO pass through"),
		W(Ser, 0x59, 0x03, "Change FPDTX FPD3_MODE_CTL to dual"),
		W(Ser, 0x05, 0x28, "Force FPD4_TX DUAL MODE"),
		W(Ser, 0x02, 0xd1, "Enable mode overwrite"),
		W(Ser, 0x2d, 0x01, ""),
		W(Ser, 0x70, 0x24, ""),
		W(Ser, 0x78, 0x24, ""),
		Page(Ser, 0x24, "Select digital reg page"),
		Ind(Ser, 0x84, "Switch encoder from FPD3 to FPD4", 0x02),
		Ind(Ser, 0x94, "Switch encoder from FPD3 to FPD4", 0x02),
		Page(Ser, 0x08, "Select PLL page"),
		Ind(Ser, 0x05, "Select Ncount Reg; Set Ncount", 0x7d),
		Ind(Ser, 0x13, "Select post div reg; Set post div for 6.75 Gbps", 0x90),
		Ind(Ser, 0x45, "Select Ncount Reg; Set Ncount", 0x7d),
		Ind(Ser, 0x53, "Select post div reg; Set post div for 6.75 Gbps", 0x90),
		W(Ser, 0x2d, 0x03, "Select write reg to both ports"),
		W(Ser, 0x6a, 0x0a, "set BC sampling rate"),
		W(Ser, 0x6e, 0x80, "set BC fractional sampling"),
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
		Sleep(time.Second, ""),
		Page(Ser, 0x08, "Select PLL page"),
		Ind(Ser, 0x1b, "Enable PLL0", 0x00),
		Ind(Ser, 0x5b, "Enable PLL1", 0x00),
		W(Ser, 0x01, 0x01, "soft reset Ser"),
		Sleep(time.Second, ""),
		EnablePassThrough(),
		W(Des, 0x01, 0x01, "Soft reset Des"),
		Sleep(time.Second, ""),
		Page(Ser, 0x2e, "Select Ser link layer"),
		Ind(Ser, 0x00, "refresh time slot", 0x03),
		W(Ser, 0x2d, 0x01, "Select write to port0 reg"),
		W(Ser, 0x48, 0x01, "Enable APB Interface"),
		APB(Ser, 0x000, 0x0, "Force HPD low to configure 983 DP settings"),
		APB(Ser, 0x074, 0x6, "Set max advertised link rate = 1.62Gbps"),
		APB(Ser, 0x070, 0x4, "Set max advertised lane count = 4"),
		APB(Ser, 0x214, 0x2, "Request min VOD swing of 0x02"),
		APB(Ser, 0x018, 0x14, "Set SST/MST mode and DP/eDP Mode"),
		APB(Ser, 0xa0c, 0x1, "Disable line reset for VS0"),
		APB(Ser, 0x000, 0x1, "Force HPD high to trigger link training"),
		Sleep(500*time.Millisecond, "Allow time after HPD is pulled high for the source to train and provide video (may need to adjust based on source properties)"),
		Page(Ser, 0x32, ""),
		Ind(Ser, 0x01, "Set VP_SRC_SELECT to Stream 0 for SST Mode", 0xa8),
		Ind(Ser, 0x02, "VID H Active", 0xd0, 0x07),
		Ind(Ser, 0x10, "Horizontal Active; Horizontal Back Porch; Horizontal Sync; Horizontal Total; Vertical Active; Vertical Back Porch; Vertical Sync; Vertical Front Porch", 0xd0, 0x07, 0x14, 0x00, 0x30, 0x00, 0x28, 0x08, 0x2a, 0x03, 0x32, 0x00, 0x1e, 0x00, 0x32, 0x00),
		Ind(Ser, 0x27, "HSYNC Polarity = +, VSYNC Polarity = +", 0x00),
		Ind(Ser, 0x23, "M/N Register; M value; N value", 0x55, 0x16, 0x0f),
		W(Ser, 0x43, 0x00, "Set number of VPs used = 1"),
		W(Ser, 0x44, 0x01, "Enable video processors"),
		ReadDPResolution(),
		APB(Ser, 0x054, 0x1, "Video Input Reset (should be executed after DP video is available from the source)"),
		Page(Ser, 0x30, ""),
		Ind(Ser, 0x29, "Set PATGEN Color Depth to 30bpp for VP0", 0x10),
		W(Ser, RegIndOffset, 0x28, "PATGEN control of VP0"),
		When(p.PatGen, W(Ser, RegIndData, 0x95, "Enable PATGEN on VP0")),
		W(Ser, 0x01, 0x30, "Reset PLLs"),
		Page(Ser, 0x2e, "Link layer Reg page"),
		Ind(Ser, 0x01, "Link layer stream enable", 0x01),
		Ind(Ser, 0x06, "Link layer time slot 0; Link layer time slot", 0x3c),
		Ind(Ser, 0x20, "Set Link layer vp bpp; Set Link layer vp bpp according to VP Bit per pixel", 0x5a),
		Ind(Ser, 0x00, "Link layer enable", 0x03),
		TempCompensation{Baseline: 4}.Steps(),
		ClearCRCErrors(),
		W(Ser, 0x2d, 0x01, ""),
		Page(Des, 0x50, "Select DTG Page"),
		Ind(Des, 0x32, "Hold Port 0 DTG in reset", 0x02),
		Ind(Des, 0x62, "Hold Port 1 DTG in reset", 0x02),
		W(Des, 0x0e, 0x03, "Select both Output Ports"),
		W(Des, 0xd0, 0x00, "Disable FPD4 video forward to Output Port"),
		W(Des, 0xd7, 0x00, "Disable FPD3 video forward to Output Port"),
		Page(Des, 0x50, "Select DTG Page"),
		Ind(Des, 0x20, "DTG detect HS active high and VS active high", 0xa3),
		Ind(Des, 0x29, "Set Hstart; Hstart upper byte", 0x80),
		Ind(Des, 0x2a, "Hstart lower byte", 0x44),
		Ind(Des, 0x2f, "Set HSW; HSW upper byte", 0x40),
		Ind(Des, 0x30, "HSW lower byte", 0x30),
		W(Des, 0x0e, 0x03, "Select both Output Ports"),
		W(Des, 0xd0, 0x0c, "Enable FPD_RX video forward to Output Port"),
		W(Des, 0xd1, 0x0f, "Every stream forwarded on DC"),
		W(Des, 0xd6, 0x00, "Send Stream 0 to Output Port 0 and Send Stream 0 to Output Port 1"),
		W(Des, 0xd7, 0x00, "FPD3 mapping disabled"),
		W(Des, 0x0e, 0x01, "Select Port 0"),
		Page(Des, 0x2c, "Configure OLDI/RGB Port Settings"),
		Ind(Des, 0x00, "", 0x37),
		Ind(Des, 0x01, "", 0x37),
		Page(Des, 0x2e, "Configure OLDI/RGB PLL"),
		Ind(Des, 0x08, "PLL_NUM23_16; PLL_NUM15_8; PLL_NUM7_0; PLL_DEN23_16; PLL_DEN15_8; PLL_DEN7_0", 0x87, 0xc6, 0x2a, 0xff, 0xff, 0xa5),
		Ind(Des, 0x18, "PLL_NDIV", 0x1e),
		Ind(Des, 0x2d, "TX_SEL_CLKDIV", 0x11),
		Page(Des, 0x50, "Configure Pixel Size"),
		Ind(Des, 0x20, "", 0x53),
		Page(Des, 0x50, "Select DTG Page"),
		Ind(Des, 0x32, "Release Des DTG reset", 0x00),
		Ind(Des, 0x62, "Release Des DTG reset", 0x00),
		W(Des, 0x01, 0x40, "OLDI Reset"),
		Page(Des, 0x2c, "Enable OLDI/RGB"),
		Ind(Des, 0x02, "", 0x14),
		Ind(Des, 0x20, "P0 TX_EN (from strap?)", 0x80),
		Ind(Des, 0x22, "P1 TX_EN (from strap?)", 0x80),
		W(Ser, 0x1d, 0x89, ""),
	), nil
}

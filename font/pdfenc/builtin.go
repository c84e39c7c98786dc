// seehuhn.de/go/pdfraster - a library for rendering PDF files
// Copyright (C) 2024  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.


package pdfenc

// Symbol is the built-in encoding of the Symbol font.
//
// See Appendix D.5 of PDF 32000-1:2008.
var Symbol = [256]string{
	".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", // 0x00
	".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", // 0x08
	".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", // 0x10
	".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", // 0x18
	"space", "exclam", "universal", "numbersign", "existential", "percent", "ampersand", "suchthat", // 0x20
	"parenleft", "parenright", "asteriskmath", "plus", "comma", "minus", "period", "slash", // 0x28
	"zero", "one", "two", "three", "four", "five", "six", "seven", // 0x30
	"eight", "nine", "colon", "semicolon", "less", "equal", "greater", "question", // 0x38
	"congruent", "Alpha", "Beta", "Chi", "Delta", "Epsilon", "Phi", "Gamma", // 0x40
	"Eta", "Iota", "theta1", "Kappa", "Lambda", "Mu", "Nu", "Omicron", // 0x48
	"Pi", "Theta", "Rho", "Sigma", "Tau", "Upsilon", "sigma1", "Omega", // 0x50
	"Xi", "Psi", "Zeta", "bracketleft", "therefore", "bracketright", "perpendicular", "underscore", // 0x58
	"radicalex", "alpha", "beta", "chi", "delta", "epsilon", "phi", "gamma", // 0x60
	"eta", "iota", "phi1", "kappa", "lambda", "mu", "nu", "omicron", // 0x68
	"pi", "theta", "rho", "sigma", "tau", "upsilon", "omega1", "omega", // 0x70
	"xi", "psi", "zeta", "braceleft", "bar", "braceright", "similar", ".notdef", // 0x78
	".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", // 0x80
	".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", // 0x88
	".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", // 0x90
	".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", // 0x98
	"Euro", "Upsilon1", "minute", "lessequal", "fraction", "infinity", "florin", "club", // 0xA0
	"diamond", "heart", "spade", "arrowboth", "arrowleft", "arrowup", "arrowright", "arrowdown", // 0xA8
	"degree", "plusminus", "second", "greaterequal", "multiply", "proportional", "partialdiff", "bullet", // 0xB0
	"divide", "notequal", "equivalence", "approxequal", "ellipsis", "arrowvertex", "arrowhorizex", "carriagereturn", // 0xB8
	"aleph", "Ifraktur", "Rfraktur", "weierstrass", "circlemultiply", "circleplus", "emptyset", "intersection", // 0xC0
	"union", "propersuperset", "reflexsuperset", "notsubset", "propersubset", "reflexsubset", "element", "notelement", // 0xC8
	"angle", "gradient", "registerserif", "copyrightserif", "trademarkserif", "product", "radical", "dotmath", // 0xD0
	"logicalnot", "logicaland", "logicalor", "arrowdblboth", "arrowdblleft", "arrowdblup", "arrowdblright", "arrowdbldown", // 0xD8
	"lozenge", "angleleft", "registersans", "copyrightsans", "trademarksans", "summation", "parenlefttp", "parenleftex", // 0xE0
	"parenleftbt", "bracketlefttp", "bracketleftex", "bracketleftbt", "bracelefttp", "braceleftmid", "braceleftbt", "braceex", // 0xE8
	".notdef", "angleright", "integral", "integraltp", "integralex", "integralbt", "parenrighttp", "parenrightex", // 0xF0
	"parenrightbt", "bracketrighttp", "bracketrightex", "bracketrightbt", "bracerighttp", "bracerightmid", "bracerightbt", ".notdef", // 0xF8
}

// ZapfDingbats is the built-in encoding of the ZapfDingbats font.
//
// See Appendix D.6 of PDF 32000-1:2008.
var ZapfDingbats = [256]string{
	".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", // 0x00
	".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", // 0x08
	".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", // 0x10
	".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", // 0x18
	"space", "a1", "a2", "a202", "a3", "a4", "a5", "a119", // 0x20
	"a118", "a117", "a11", "a12", "a13", "a14", "a15", "a16", // 0x28
	"a105", "a17", "a18", "a19", "a20", "a21", "a22", "a23", // 0x30
	"a24", "a25", "a26", "a27", "a28", "a6", "a7", "a8", // 0x38
	"a9", "a10", "a29", "a30", "a31", "a32", "a33", "a34", // 0x40
	"a35", "a36", "a37", "a38", "a39", "a40", "a41", "a42", // 0x48
	"a43", "a44", "a45", "a46", "a47", "a48", "a49", "a50", // 0x50
	"a51", "a52", "a53", "a54", "a55", "a56", "a57", "a58", // 0x58
	"a59", "a60", "a61", "a62", "a63", "a64", "a65", "a66", // 0x60
	"a67", "a68", "a69", "a70", "a71", "a72", "a73", "a74", // 0x68
	"a203", "a75", "a204", "a76", "a77", "a78", "a79", "a81", // 0x70
	"a82", "a83", "a84", "a97", "a98", "a99", "a100", ".notdef", // 0x78
	"a89", "a90", "a93", "a94", "a91", "a92", "a205", "a85", // 0x80
	"a206", "a86", "a87", "a88", "a95", "a96", ".notdef", ".notdef", // 0x88
	".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", // 0x90
	".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", ".notdef", // 0x98
	".notdef", "a101", "a102", "a103", "a104", "a106", "a107", "a108", // 0xA0
	"a112", "a111", "a110", "a109", "a120", "a121", "a122", "a123", // 0xA8
	"a124", "a125", "a126", "a127", "a128", "a129", "a130", "a131", // 0xB0
	"a132", "a133", "a134", "a135", "a136", "a137", "a138", "a139", // 0xB8
	"a140", "a141", "a142", "a143", "a144", "a145", "a146", "a147", // 0xC0
	"a148", "a149", "a150", "a151", "a152", "a153", "a154", "a155", // 0xC8
	"a156", "a157", "a158", "a159", "a160", "a161", "a163", "a164", // 0xD0
	"a196", "a165", "a192", "a166", "a167", "a168", "a169", "a170", // 0xD8
	"a171", "a172", "a173", "a162", "a174", "a175", "a176", "a177", // 0xE0
	"a178", "a179", "a193", "a180", "a199", "a181", "a200", "a182", // 0xE8
	".notdef", "a201", "a183", "a184", "a197", "a185", "a194", "a198", // 0xF0
	"a186", "a195", "a187", "a188", "a189", "a190", "a191", ".notdef", // 0xF8
}

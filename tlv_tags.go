package iso8583

// TagFormat is the EMV data format of a tag's value.
type TagFormat int

const (
	FormatBinary            TagFormat = iota // b
	FormatNumeric                            // n, BCD right-justified
	FormatCompressedNumeric                  // cn, BCD left-justified, F padded
	FormatAlphaNumeric                       // an
	FormatAlphaNumericSpecial                // ans
)

func (f TagFormat) String() string {
	switch f {
	case FormatNumeric:
		return "n"
	case FormatCompressedNumeric:
		return "cn"
	case FormatAlphaNumeric:
		return "an"
	case FormatAlphaNumericSpecial:
		return "ans"
	default:
		return "b"
	}
}

// TagSpec describes one EMV tag: its name, format and allowed value size
// in bytes.
type TagSpec struct {
	Name   string
	Format TagFormat
	MinLen int
	MaxLen int
}

// field55Tags are the ICC data elements carried in field 55.
var field55Tags = map[string]TagSpec{
	"4F":   {"Application Identifier (AID)", FormatBinary, 5, 16},
	"50":   {"Application Label", FormatAlphaNumericSpecial, 1, 16},
	"57":   {"Track 2 Equivalent Data", FormatBinary, 1, 19},
	"5A":   {"Application PAN", FormatCompressedNumeric, 1, 10},
	"5F24": {"Application Expiration Date", FormatNumeric, 3, 3},
	"5F2A": {"Transaction Currency Code", FormatNumeric, 2, 2},
	"5F34": {"PAN Sequence Number", FormatNumeric, 1, 1},
	"71":   {"Issuer Script Template 1", FormatBinary, 0, 255},
	"72":   {"Issuer Script Template 2", FormatBinary, 0, 255},
	"82":   {"Application Interchange Profile", FormatBinary, 2, 2},
	"84":   {"Dedicated File Name", FormatBinary, 5, 16},
	"8A":   {"Authorisation Response Code", FormatAlphaNumeric, 2, 2},
	"91":   {"Issuer Authentication Data", FormatBinary, 8, 16},
	"95":   {"Terminal Verification Results", FormatBinary, 5, 5},
	"9A":   {"Transaction Date", FormatNumeric, 3, 3},
	"9B":   {"Transaction Status Information", FormatBinary, 2, 2},
	"9C":   {"Transaction Type", FormatNumeric, 1, 1},
	"9F02": {"Amount, Authorised", FormatNumeric, 6, 6},
	"9F03": {"Amount, Other", FormatNumeric, 6, 6},
	"9F06": {"Application Identifier (Terminal)", FormatBinary, 5, 16},
	"9F09": {"Application Version Number", FormatBinary, 2, 2},
	"9F10": {"Issuer Application Data", FormatBinary, 0, 32},
	"9F1A": {"Terminal Country Code", FormatNumeric, 2, 2},
	"9F1E": {"Interface Device Serial Number", FormatAlphaNumeric, 8, 8},
	"9F26": {"Application Cryptogram", FormatBinary, 8, 8},
	"9F27": {"Cryptogram Information Data", FormatBinary, 1, 1},
	"9F33": {"Terminal Capabilities", FormatBinary, 3, 3},
	"9F34": {"CVM Results", FormatBinary, 3, 3},
	"9F35": {"Terminal Type", FormatNumeric, 1, 1},
	"9F36": {"Application Transaction Counter", FormatBinary, 2, 2},
	"9F37": {"Unpredictable Number", FormatBinary, 4, 4},
	"9F41": {"Transaction Sequence Counter", FormatNumeric, 2, 4},
	"9F53": {"Transaction Category Code", FormatAlphaNumeric, 1, 1},
	"9F5B": {"Issuer Script Results", FormatBinary, 0, 255},
	"9F63": {"Card Product Identification", FormatBinary, 16, 16},
	"9F74": {"Issuer Authorization Code", FormatAlphaNumeric, 6, 6},
	"DF31": {"Issuer Script Results (private)", FormatBinary, 0, 255},
}

// LookupField55Tag returns the TagSpec of a field 55 tag given as hex text.
func LookupField55Tag(tag string) (TagSpec, bool) {
	spec, ok := field55Tags[normalizeTag(tag)]
	return spec, ok
}

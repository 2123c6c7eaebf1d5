package iso8583

const (
	MTIAuthorizationRequest            = "0100"
	MTIAuthorizationResponse           = "0110"
	MTIFinancialRequest                = "0200"
	MTIFinancialResponse               = "0210"
	MTIAdviceRequest                   = "0220"
	MTIAdviceResponse                  = "0230"
	MTIBatchUploadRequest              = "0320"
	MTIBatchUploadResponse             = "0330"
	MTIReversalRequest                 = "0400"
	MTIReversalResponse                = "0410"
	MTISettlementRequest               = "0500"
	MTISettlementResponse              = "0510"
	MTINetworkManagementRequest        = "0800"
	MTINetworkManagementResponse       = "0810"
	MTINetworkManagementAdvice         = "0820"
	MTINetworkManagementAdviceResponse = "0830"
)

var (
	numericLL  = Variable(EncodingNumeric, LengthLLVAR)
	numericLLL = Variable(EncodingNumeric, LengthLLLVAR)
	charLL     = Variable(EncodingChar, LengthLLVAR)
	charLLL    = Variable(EncodingChar, LengthLLLVAR)
	binaryLLL  = Variable(EncodingByteNumeric, LengthLLLVAR)
)

func numericN(n int) FieldType    { return Fixed(EncodingNumeric, n) }
func charN(n int) FieldType       { return Fixed(EncodingChar, n) }
func binaryBytes(n int) FieldType { return Fixed(EncodingByteNumeric, n) }

// DefaultFieldTypes returns the 64 field POS terminal profile: numeric
// elements packed BCD with BCD length prefixes, text elements in the
// schema charset, binary elements as BYTE_NUMERIC. The map is a fresh copy.
func DefaultFieldTypes() map[int]FieldType {
	return map[int]FieldType{
		// Field 1 is the secondary bitmap flag, derived from the fields present.

		2:  numericLL,      // Primary Account Number (PAN)
		3:  numericN(6),    // Processing Code
		4:  numericN(12),   // Amount, Transaction
		11: numericN(6),    // System Trace Audit Number (STAN)
		12: numericN(6),    // Time, Local Transaction (hhmmss)
		13: numericN(4),    // Date, Local Transaction (MMDD)
		14: numericN(4),    // Date, Expiration (YYMM)
		15: numericN(4),    // Date, Settlement
		22: numericN(3),    // Point of Service Entry Mode
		23: numericN(3),    // Card Sequence Number
		25: numericN(2),    // Point of Service Condition Code
		26: numericN(2),    // Point of Service PIN Capture Code
		32: numericLL,      // Acquiring Institution Identification Code
		35: numericLL,      // Track 2 Data ('=' travels as nibble D)
		36: numericLLL,     // Track 3 Data
		37: charN(12),      // Retrieval Reference Number
		38: charN(6),       // Authorization Identification Response
		39: charN(2),       // Response Code
		41: charN(8),       // Card Acceptor Terminal Identification
		42: charN(15),      // Card Acceptor Identification Code
		44: charLL,         // Additional Response Data
		48: numericLLL,     // Additional Data, Private
		49: charN(3),       // Currency Code, Transaction
		52: binaryBytes(8), // PIN Data
		53: numericN(16),   // Security Related Control Information
		54: charLLL,        // Additional Amounts
		55: binaryLLL,      // ICC System Related Data (BER-TLV)
		58: charLLL,        // Reserved, private
		59: charLLL,        // Reserved, private
		60: numericLLL,     // Reserved, private: message type, batch number, network code
		61: numericLLL,     // Original Message Data
		62: charLLL,        // Reserved, private: terminal data, key material in 0810
		63: charLLL,        // Reserved, private: operator and card organisation
		64: binaryBytes(8), // Message Authentication Code
	}
}

// NewDefaultSchema builds the POS terminal profile: DefaultDataHeader,
// DefaultFieldTypes, field 55 as EMV TLV and field 62 as binary key
// material in 0810 responses. Options are applied after the defaults.
func NewDefaultSchema(opts ...SchemaOption) (*Schema, error) {
	defaults := []SchemaOption{
		WithFields(DefaultFieldTypes()),
		WithSpecialField(62, MTIFieldTypes{
			MTINetworkManagementResponse: binaryLLL,
		}),
		WithTLVField(55, NewField55Parser()),
	}
	return NewSchema(DefaultDataHeader(), append(defaults, opts...)...)
}

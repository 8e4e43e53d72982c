package transform

// forwardMappings is consulted on the client→scheme leg. The
// authoritative field map comes from the ISO 20022 MIG; the entries
// below carry the fields spec.md §4.5 names explicitly (EndToEndId,
// InstructionId, TransactionId carried unchanged; amount/currency
// preserved without rounding; MsgId freshly minted with the source
// recorded in OrgnlMsgId where the destination schema offers it).
//
// Source paths address the decoded inbound JSON envelope, whose
// top-level key IS the outer tag (CstmrCdtTrfInitn, ...), so a "0"
// segment there addresses the first element of a real repeated group
// (CdtTrfTxInf, PmtInf, ...). Destination paths never repeat
// DestRoot: walk builds the tree below the root, and encodeXML adds
// the root wrapper itself (see Transform). The walker always builds a
// single-transaction destination tree, so no destination path ever
// needs a numeric segment either.
var forwardMappings = map[string]Mapping{
	"pain.001": {
		SourceType: "pain.001",
		DestType:   "pacs.008",
		DestRoot:   "FIToFICstmrCdtTrf",
		UETRDest:   []string{"CdtTrfTxInf", "PmtId", "UETR"},
		MsgIDDest:  []string{"GrpHdr", "MsgId"},
		OrgnlMsgID: []string{"GrpHdr", "OrgnlMsgId"},
		Fields: []FieldMap{
			{Source: []string{"CstmrCdtTrfInitn", "GrpHdr", "MsgId"}, Dest: []string{"GrpHdr", "OrgnlMsgId"}, Required: false},
			{Source: []string{"CstmrCdtTrfInitn", "PmtInf", "0", "CdtTrfTxInf", "0", "PmtId", "EndToEndId"}, Dest: []string{"CdtTrfTxInf", "PmtId", "EndToEndId"}, Required: true},
			{Source: []string{"CstmrCdtTrfInitn", "PmtInf", "0", "CdtTrfTxInf", "0", "PmtId", "InstrId"}, Dest: []string{"CdtTrfTxInf", "PmtId", "InstrId"}, Required: false},
			{Source: []string{"CstmrCdtTrfInitn", "PmtInf", "0", "CdtTrfTxInf", "0", "Amt", "InstdAmt", "value"}, Dest: []string{"CdtTrfTxInf", "IntrBkSttlmAmt", "value"}, Required: true},
			{Source: []string{"CstmrCdtTrfInitn", "PmtInf", "0", "CdtTrfTxInf", "0", "Amt", "InstdAmt", "currency"}, Dest: []string{"CdtTrfTxInf", "IntrBkSttlmAmt", "currency"}, Required: true},
			{Source: []string{"CstmrCdtTrfInitn", "PmtInf", "0", "Dbtr", "Nm"}, Dest: []string{"CdtTrfTxInf", "Dbtr", "Nm"}, Required: true},
			{Source: []string{"CstmrCdtTrfInitn", "PmtInf", "0", "DbtrAcct", "Id", "IBAN"}, Dest: []string{"CdtTrfTxInf", "DbtrAcct", "Id", "IBAN"}, Required: true},
			{Source: []string{"CstmrCdtTrfInitn", "PmtInf", "0", "CdtTrfTxInf", "0", "Cdtr", "Nm"}, Dest: []string{"CdtTrfTxInf", "Cdtr", "Nm"}, Required: true},
			{Source: []string{"CstmrCdtTrfInitn", "PmtInf", "0", "CdtTrfTxInf", "0", "CdtrAcct", "Id", "IBAN"}, Dest: []string{"CdtTrfTxInf", "CdtrAcct", "Id", "IBAN"}, Required: true},
		},
	},
	"camt.055": {
		SourceType: "camt.055",
		DestType:   "pacs.007",
		DestRoot:   "FIToFIPmtRvsl",
		UETRDest:   []string{"TxInfAndSts", "OrgnlTxId", "OrgnlUETR"},
		MsgIDDest:  []string{"GrpHdr", "MsgId"},
		OrgnlMsgID: []string{"GrpHdr", "OrgnlMsgId"},
		Fields: []FieldMap{
			{Source: []string{"CstmrPmtCxlReq", "GrpHdr", "MsgId"}, Dest: []string{"GrpHdr", "OrgnlMsgId"}, Required: false},
			{Source: []string{"CstmrPmtCxlReq", "Undrlyg", "0", "OrgnlTxInfAndCxl", "0", "OrgnlTxId", "OrgnlEndToEndId"}, Dest: []string{"TxInfAndSts", "OrgnlEndToEndId"}, Required: true},
			{Source: []string{"CstmrPmtCxlReq", "Undrlyg", "0", "OrgnlTxInfAndCxl", "0", "CxlRsnInf", "Rsn"}, Dest: []string{"TxInfAndSts", "RvslRsnInf", "Rsn"}, Required: true},
		},
	},
	"camt.056": {
		SourceType: "camt.056",
		DestType:   "pacs.028",
		DestRoot:   "FIToFIPmtStsReq",
		UETRDest:   []string{"TxInf", "OrgnlTxId", "OrgnlUETR"},
		MsgIDDest:  []string{"GrpHdr", "MsgId"},
		OrgnlMsgID: []string{"GrpHdr", "OrgnlMsgId"},
		Fields: []FieldMap{
			{Source: []string{"FIToFIPmtCxlReq", "GrpHdr", "MsgId"}, Dest: []string{"GrpHdr", "OrgnlMsgId"}, Required: false},
			{Source: []string{"FIToFIPmtCxlReq", "Undrlyg", "0", "OrgnlTxInfAndCxl", "0", "OrgnlTxId", "OrgnlEndToEndId"}, Dest: []string{"TxInf", "OrgnlEndToEndId"}, Required: true},
		},
	},
}

// inverseMappings is consulted on the scheme→client leg: scheme status
// reports mapped back into a PAIN.002 (or generic client notification)
// shaped to echo the original message id. decodeXML strips the root
// tag off the tree it returns (the caller already has it, as the
// return value's first result), so Source paths here never repeat the
// source message's root tag either.
var inverseMappings = map[string]Mapping{
	"pacs.002": {
		SourceType: "pacs.002",
		DestType:   "pain.002",
		DestRoot:   "CstmrPmtStsRpt",
		UETRDest:   []string{"OrgnlPmtInfAndSts", "TxInfAndSts", "OrgnlTxId", "OrgnlUETR"},
		MsgIDDest:  []string{"GrpHdr", "MsgId"},
		OrgnlMsgID: []string{"OrgnlGrpInfAndSts", "OrgnlMsgId"},
		Fields: []FieldMap{
			{Source: []string{"GrpHdr", "MsgId"}, Dest: []string{"OrgnlGrpInfAndSts", "OrgnlMsgId"}, Required: false},
			{Source: []string{"TxInfAndSts", "0", "TxSts"}, Dest: []string{"OrgnlPmtInfAndSts", "TxInfAndSts", "TxSts"}, Required: true},
			{Source: []string{"TxInfAndSts", "0", "StsRsnInf", "Rsn"}, Dest: []string{"OrgnlPmtInfAndSts", "TxInfAndSts", "StsRsnInf", "Rsn"}, Required: false},
		},
	},
	"pacs.004": {
		SourceType: "pacs.004",
		DestType:   "pain.002",
		DestRoot:   "CstmrPmtStsRpt",
		UETRDest:   []string{"OrgnlPmtInfAndSts", "TxInfAndSts", "OrgnlTxId", "OrgnlUETR"},
		MsgIDDest:  []string{"GrpHdr", "MsgId"},
		OrgnlMsgID: []string{"OrgnlGrpInfAndSts", "OrgnlMsgId"},
		Fields: []FieldMap{
			{Source: []string{"GrpHdr", "MsgId"}, Dest: []string{"OrgnlGrpInfAndSts", "OrgnlMsgId"}, Required: false},
			{Source: []string{"TxInf", "0", "RtrRsnInf", "Rsn"}, Dest: []string{"OrgnlPmtInfAndSts", "TxInfAndSts", "StsRsnInf", "Rsn"}, Required: true},
		},
	},
	"camt.054": {
		SourceType: "camt.054",
		DestType:   "clientNotification",
		DestRoot:   "ClientNtfctn",
		UETRDest:   []string{"Refs", "UETR"},
		Fields: []FieldMap{
			{Source: []string{"Ntry", "0", "Amt", "value"}, Dest: []string{"Amt", "value"}, Required: true},
			{Source: []string{"Ntry", "0", "Amt", "currency"}, Dest: []string{"Amt", "currency"}, Required: true},
			{Source: []string{"Ntry", "0", "CdtDbtInd"}, Dest: []string{"CdtDbtInd"}, Required: true},
		},
	},
	"camt.029": {
		SourceType: "camt.029",
		DestType:   "clientNotification",
		DestRoot:   "ClientNtfctn",
		UETRDest:   []string{"Refs", "UETR"},
		Fields: []FieldMap{
			{Source: []string{"CxlDtls", "0", "TxInfAndSts", "0", "TxSts"}, Dest: []string{"Sts"}, Required: true},
			{Source: []string{"Sts", "Conf"}, Dest: []string{"InvestigationStatus"}, Required: false},
		},
	},
}

// xmlRootMessageType maps a scheme response's outer XML tag to the
// inverseMappings key for it: ShapeClientResponse only has the decoded
// wire bytes to work from, so it must recover the message type from
// the root element decodeXML reports rather than being told it.
var xmlRootMessageType = map[string]string{
	"FIToFIPmtStsRpt":       "pacs.002",
	"PmtRtr":                "pacs.004",
	"BkToCstmrDbtCdtNtfctn": "camt.054",
	"RsltnOfInvstgtn":       "camt.029",
}

package theta

import (
	"fmt"
	"strings"
)

// OptionReq selects the option request subtype on HIST/AT_TIME/LAST calls.
type OptionReq int

// Option request type codes.
const (
	OptionReqEOD OptionReq = 1

	OptionReqQuote        OptionReq = 101
	OptionReqVolume       OptionReq = 102
	OptionReqOpenInterest OptionReq = 103
	OptionReqOHLC         OptionReq = 104
	OptionReqOHLCQuote    OptionReq = 105

	OptionReqTrade             OptionReq = 201
	OptionReqImpliedVol        OptionReq = 202
	OptionReqGreeks            OptionReq = 203
	OptionReqLiquidity         OptionReq = 204
	OptionReqLiquidityPlus     OptionReq = 205
	OptionReqImpliedVolVerbose OptionReq = 206

	OptionReqTradeGreeks      OptionReq = 301
	OptionReqGreeksSecond     OptionReq = 302
	OptionReqGreeksThird      OptionReq = 303
	OptionReqAlternativeCalcs OptionReq = 304
)

// String returns the request type's name, which doubles as the REST
// endpoint segment once lowercased.
func (r OptionReq) String() string {
	switch r {
	case OptionReqEOD:
		return "EOD"
	case OptionReqQuote:
		return "QUOTE"
	case OptionReqVolume:
		return "VOLUME"
	case OptionReqOpenInterest:
		return "OPEN_INTEREST"
	case OptionReqOHLC:
		return "OHLC"
	case OptionReqOHLCQuote:
		return "OHLC_QUOTE"
	case OptionReqTrade:
		return "TRADE"
	case OptionReqImpliedVol:
		return "IMPLIED_VOLATILITY"
	case OptionReqGreeks:
		return "GREEKS"
	case OptionReqLiquidity:
		return "LIQUIDITY"
	case OptionReqLiquidityPlus:
		return "LIQUIDITY_PLUS"
	case OptionReqImpliedVolVerbose:
		return "IMPLIED_VOLATILITY_VERBOSE"
	case OptionReqTradeGreeks:
		return "TRADE_GREEKS"
	case OptionReqGreeksSecond:
		return "GREEKS_SECOND_ORDER"
	case OptionReqGreeksThird:
		return "GREEKS_THIRD_ORDER"
	case OptionReqAlternativeCalcs:
		return "ALT_CALCS"
	default:
		return fmt.Sprintf("OPTION_REQ(%d)", int(r))
	}
}

var optionReqNames = map[string]OptionReq{
	"EOD":                        OptionReqEOD,
	"QUOTE":                      OptionReqQuote,
	"VOLUME":                     OptionReqVolume,
	"OPEN_INTEREST":              OptionReqOpenInterest,
	"OHLC":                       OptionReqOHLC,
	"OHLC_QUOTE":                 OptionReqOHLCQuote,
	"TRADE":                      OptionReqTrade,
	"IMPLIED_VOLATILITY":         OptionReqImpliedVol,
	"GREEKS":                     OptionReqGreeks,
	"LIQUIDITY":                  OptionReqLiquidity,
	"LIQUIDITY_PLUS":             OptionReqLiquidityPlus,
	"IMPLIED_VOLATILITY_VERBOSE": OptionReqImpliedVolVerbose,
	"TRADE_GREEKS":               OptionReqTradeGreeks,
	"GREEKS_SECOND_ORDER":        OptionReqGreeksSecond,
	"GREEKS_THIRD_ORDER":         OptionReqGreeksThird,
	"ALT_CALCS":                  OptionReqAlternativeCalcs,
}

// ParseOptionReq maps a request type name (any case) to an OptionReq.
func ParseOptionReq(s string) (OptionReq, error) {
	if r, ok := optionReqNames[strings.ToUpper(s)]; ok {
		return r, nil
	}
	return 0, fmt.Errorf("%w: option request type %q", ErrEnumParse, s)
}

// StockReq selects the stock request subtype on HIST/AT_TIME/LAST calls.
type StockReq int

// Stock request type codes.
const (
	StockReqEOD    StockReq = 1
	StockReqQuote  StockReq = 101
	StockReqVolume StockReq = 102
	StockReqOHLC   StockReq = 104
	StockReqTrade  StockReq = 201
)

// String returns the request type's name, which doubles as the REST
// endpoint segment once lowercased.
func (r StockReq) String() string {
	switch r {
	case StockReqEOD:
		return "EOD"
	case StockReqQuote:
		return "QUOTE"
	case StockReqVolume:
		return "VOLUME"
	case StockReqOHLC:
		return "OHLC"
	case StockReqTrade:
		return "TRADE"
	default:
		return fmt.Sprintf("STOCK_REQ(%d)", int(r))
	}
}

var stockReqNames = map[string]StockReq{
	"EOD":    StockReqEOD,
	"QUOTE":  StockReqQuote,
	"VOLUME": StockReqVolume,
	"OHLC":   StockReqOHLC,
	"TRADE":  StockReqTrade,
}

// ParseStockReq maps a request type name (any case) to a StockReq.
func ParseStockReq(s string) (StockReq, error) {
	if r, ok := stockReqNames[strings.ToUpper(s)]; ok {
		return r, nil
	}
	return 0, fmt.Errorf("%w: stock request type %q", ErrEnumParse, s)
}

// Exchange identifies a market center in quote and trade payloads.
// The vocabulary is closed: unknown codes are a protocol error.
type Exchange int32

// Exchange codes as reported by the Terminal.
const (
	ExchangeOPRA Exchange = 0  // Options Price Reporting Authority
	ExchangeNQEX Exchange = 1  // Nasdaq Exchange
	ExchangeNQAD Exchange = 2  // Nasdaq Alternative Display Facility
	ExchangeNYSE Exchange = 3  // New York Stock Exchange
	ExchangeAMEX Exchange = 4  // NYSE American
	ExchangeCBOE Exchange = 5  // Cboe Options Exchange
	ExchangeISEX Exchange = 6  // Nasdaq ISE
	ExchangePACF Exchange = 7  // NYSE Arca
	ExchangeCINC Exchange = 8  // NYSE National
	ExchangePHIL Exchange = 9  // Nasdaq PHLX
	ExchangeBOST Exchange = 10 // Nasdaq BX Options
	ExchangeBATS Exchange = 11 // Cboe BZX Options
	ExchangeBATY Exchange = 12 // Cboe BYX
	ExchangeEDGA Exchange = 13 // Cboe EDGA
	ExchangeEDGX Exchange = 14 // Cboe EDGX Options
	ExchangeMIAX Exchange = 15 // MIAX Options
	ExchangePERL Exchange = 16 // MIAX Pearl
	ExchangeEMLD Exchange = 17 // MIAX Emerald
	ExchangeGMNI Exchange = 18 // Nasdaq GEMX
	ExchangeMRCY Exchange = 19 // Nasdaq MRX
	ExchangeC2   Exchange = 20 // Cboe C2 Options
	ExchangeMEMX Exchange = 21 // MEMX Options
)

var exchangeNames = map[Exchange]string{
	ExchangeOPRA: "OPRA",
	ExchangeNQEX: "NQEX",
	ExchangeNQAD: "NQAD",
	ExchangeNYSE: "NYSE",
	ExchangeAMEX: "AMEX",
	ExchangeCBOE: "CBOE",
	ExchangeISEX: "ISEX",
	ExchangePACF: "PACF",
	ExchangeCINC: "CINC",
	ExchangePHIL: "PHIL",
	ExchangeBOST: "BOST",
	ExchangeBATS: "BATS",
	ExchangeBATY: "BATY",
	ExchangeEDGA: "EDGA",
	ExchangeEDGX: "EDGX",
	ExchangeMIAX: "MIAX",
	ExchangePERL: "PERL",
	ExchangeEMLD: "EMLD",
	ExchangeGMNI: "GMNI",
	ExchangeMRCY: "MRCY",
	ExchangeC2:   "C2",
	ExchangeMEMX: "MEMX",
}

// ExchangeFromCode maps a wire code to an Exchange.
func ExchangeFromCode(code int32) (Exchange, error) {
	e := Exchange(code)
	if _, ok := exchangeNames[e]; !ok {
		return 0, fmt.Errorf("%w: exchange code %d", ErrEnumParse, code)
	}
	return e, nil
}

// String returns the exchange's short name.
func (e Exchange) String() string {
	if name, ok := exchangeNames[e]; ok {
		return name
	}
	return fmt.Sprintf("EXCH(%d)", int32(e))
}

// TradeCondition is the sale condition attached to a trade report.
// The Terminal adds codes over time, so unknown codes degrade to
// TradeCondUndefined instead of failing the frame.
type TradeCondition int32

// Trade condition codes.
const (
	// TradeCondUndefined is the sentinel for wire codes this library does
	// not know. It never appears on the wire.
	TradeCondUndefined TradeCondition = -1

	TradeCondRegular            TradeCondition = 0
	TradeCondFormT              TradeCondition = 1
	TradeCondOutOfSeq           TradeCondition = 2
	TradeCondAvgPrice           TradeCondition = 3
	TradeCondAvgPriceNasdaq     TradeCondition = 4
	TradeCondOpenReportLate     TradeCondition = 5
	TradeCondOpenReportOutOfSeq TradeCondition = 6
	TradeCondOpenReportInSeq    TradeCondition = 7
	TradeCondPriorReference     TradeCondition = 8
	TradeCondNextDaySale        TradeCondition = 9
	TradeCondBunched            TradeCondition = 10
	TradeCondCashSale           TradeCondition = 11
	TradeCondSeller             TradeCondition = 12
	TradeCondSoldLast           TradeCondition = 13
	TradeCondRule127            TradeCondition = 14
	TradeCondBunchedSold        TradeCondition = 15
	TradeCondNonBoardLot        TradeCondition = 16
	TradeCondPOSIT              TradeCondition = 17
	TradeCondAutoExecution      TradeCondition = 18
	TradeCondHalt               TradeCondition = 19
	TradeCondDelayed            TradeCondition = 20
	TradeCondReopen             TradeCondition = 21
	TradeCondAcquisition        TradeCondition = 22
	TradeCondCashOnly           TradeCondition = 23
	TradeCondNextDayClearing    TradeCondition = 24
	TradeCondBasketIndex        TradeCondition = 25
	TradeCondIntermarketSweep   TradeCondition = 26
	TradeCondDerivative         TradeCondition = 27
	TradeCondReopening          TradeCondition = 28
	TradeCondClosing            TradeCondition = 29
	TradeCondCAPElection        TradeCondition = 30
	TradeCondSpotSettlement     TradeCondition = 31
	TradeCondAvgPriceTrade      TradeCondition = 32
	TradeCondOddLot             TradeCondition = 33
	TradeCondPriceVariation     TradeCondition = 34
	TradeCondStockOption        TradeCondition = 35
	TradeCondStopped            TradeCondition = 36
	TradeCondBenchmark          TradeCondition = 37
	TradeCondTradeThroughExempt TradeCondition = 38
	TradeCondContingent         TradeCondition = 39
	TradeCondQualifiedContingent TradeCondition = 40
	TradeCondOpeningTrade        TradeCondition = 41
	TradeCondExtendedHours       TradeCondition = 42
)

var tradeConditionNames = map[TradeCondition]string{
	TradeCondRegular:             "REGULAR",
	TradeCondFormT:               "FORM_T",
	TradeCondOutOfSeq:            "OUT_OF_SEQ",
	TradeCondAvgPrice:            "AVG_PRICE",
	TradeCondAvgPriceNasdaq:      "AVG_PRICE_NASDAQ",
	TradeCondOpenReportLate:      "OPEN_REPORT_LATE",
	TradeCondOpenReportOutOfSeq:  "OPEN_REPORT_OUT_OF_SEQ",
	TradeCondOpenReportInSeq:     "OPEN_REPORT_IN_SEQ",
	TradeCondPriorReference:      "PRIOR_REFERENCE_PRICE",
	TradeCondNextDaySale:         "NEXT_DAY_SALE",
	TradeCondBunched:             "BUNCHED",
	TradeCondCashSale:            "CASH_SALE",
	TradeCondSeller:              "SELLER",
	TradeCondSoldLast:            "SOLD_LAST",
	TradeCondRule127:             "RULE_127",
	TradeCondBunchedSold:         "BUNCHED_SOLD",
	TradeCondNonBoardLot:         "NON_BOARD_LOT",
	TradeCondPOSIT:               "POSIT",
	TradeCondAutoExecution:       "AUTO_EXECUTION",
	TradeCondHalt:                "HALT",
	TradeCondDelayed:             "DELAYED",
	TradeCondReopen:              "REOPEN",
	TradeCondAcquisition:         "ACQUISITION",
	TradeCondCashOnly:            "CASH_ONLY",
	TradeCondNextDayClearing:     "NEXT_DAY_CLEARING",
	TradeCondBasketIndex:         "BASKET_INDEX",
	TradeCondIntermarketSweep:    "INTERMARKET_SWEEP",
	TradeCondDerivative:          "DERIVATIVE",
	TradeCondReopening:           "REOPENING",
	TradeCondClosing:             "CLOSING",
	TradeCondCAPElection:         "CAP_ELECTION",
	TradeCondSpotSettlement:      "SPOT_SETTLEMENT",
	TradeCondAvgPriceTrade:       "AVG_PRICE_TRADE",
	TradeCondOddLot:              "ODD_LOT",
	TradeCondPriceVariation:      "PRICE_VARIATION",
	TradeCondStockOption:         "STOCK_OPTION",
	TradeCondStopped:             "STOPPED",
	TradeCondBenchmark:           "BENCHMARK",
	TradeCondTradeThroughExempt:  "TRADE_THROUGH_EXEMPT",
	TradeCondContingent:          "CONTINGENT",
	TradeCondQualifiedContingent: "QUALIFIED_CONTINGENT",
	TradeCondOpeningTrade:        "OPENING_TRADE",
	TradeCondExtendedHours:       "EXTENDED_HOURS",
}

// TradeConditionFromCode maps a wire code to a TradeCondition. Unknown
// codes return TradeCondUndefined; this lookup never fails.
func TradeConditionFromCode(code int32) TradeCondition {
	tc := TradeCondition(code)
	if _, ok := tradeConditionNames[tc]; !ok {
		return TradeCondUndefined
	}
	return tc
}

// String returns the condition's name.
func (tc TradeCondition) String() string {
	if name, ok := tradeConditionNames[tc]; ok {
		return name
	}
	return "UNDEFINED"
}

// QuoteCondition is the condition attached to a quote update. Unknown
// codes degrade to QuoteCondUndefined, like trade conditions.
type QuoteCondition int32

// Quote condition codes.
const (
	// QuoteCondUndefined is the sentinel for unknown wire codes.
	QuoteCondUndefined QuoteCondition = -1

	QuoteCondRegular           QuoteCondition = 0
	QuoteCondBidAskAutoExec    QuoteCondition = 1
	QuoteCondRotation          QuoteCondition = 2
	QuoteCondSpecialistAsk     QuoteCondition = 3
	QuoteCondSpecialistBid     QuoteCondition = 4
	QuoteCondLocked            QuoteCondition = 5
	QuoteCondFastMarket        QuoteCondition = 6
	QuoteCondSpecialistBidAsk  QuoteCondition = 7
	QuoteCondNonFirm           QuoteCondition = 8
	QuoteCondFirmDemand        QuoteCondition = 9
	QuoteCondRotationSpecAsk   QuoteCondition = 10
	QuoteCondRotationSpecBid   QuoteCondition = 11
	QuoteCondManualAskAutoBid  QuoteCondition = 12
	QuoteCondManualBidAutoAsk  QuoteCondition = 13
	QuoteCondManualBidAsk      QuoteCondition = 14
	QuoteCondOpening           QuoteCondition = 15
	QuoteCondCrossed           QuoteCondition = 16
	QuoteCondClosed            QuoteCondition = 17
	QuoteCondHalted            QuoteCondition = 18
	QuoteCondNonFirmBidAsk     QuoteCondition = 19
	QuoteCondOneSideFirm       QuoteCondition = 20
)

var quoteConditionNames = map[QuoteCondition]string{
	QuoteCondRegular:          "REGULAR",
	QuoteCondBidAskAutoExec:   "BID_ASK_AUTO_EXEC",
	QuoteCondRotation:         "ROTATION",
	QuoteCondSpecialistAsk:    "SPECIALIST_ASK",
	QuoteCondSpecialistBid:    "SPECIALIST_BID",
	QuoteCondLocked:           "LOCKED",
	QuoteCondFastMarket:       "FAST_MARKET",
	QuoteCondSpecialistBidAsk: "SPECIALIST_BID_ASK",
	QuoteCondNonFirm:          "NON_FIRM",
	QuoteCondFirmDemand:       "FIRM_DEMAND",
	QuoteCondRotationSpecAsk:  "ROTATION_SPECIALIST_ASK",
	QuoteCondRotationSpecBid:  "ROTATION_SPECIALIST_BID",
	QuoteCondManualAskAutoBid: "MANUAL_ASK_AUTO_BID",
	QuoteCondManualBidAutoAsk: "MANUAL_BID_AUTO_ASK",
	QuoteCondManualBidAsk:     "MANUAL_BID_ASK",
	QuoteCondOpening:          "OPENING",
	QuoteCondCrossed:          "CROSSED",
	QuoteCondClosed:           "CLOSED",
	QuoteCondHalted:           "HALTED",
	QuoteCondNonFirmBidAsk:    "NON_FIRM_BID_ASK",
	QuoteCondOneSideFirm:      "ONE_SIDE_FIRM",
}

// QuoteConditionFromCode maps a wire code to a QuoteCondition. Unknown
// codes return QuoteCondUndefined; this lookup never fails.
func QuoteConditionFromCode(code int32) QuoteCondition {
	qc := QuoteCondition(code)
	if _, ok := quoteConditionNames[qc]; !ok {
		return QuoteCondUndefined
	}
	return qc
}

// String returns the condition's name.
func (qc QuoteCondition) String() string {
	if name, ok := quoteConditionNames[qc]; ok {
		return name
	}
	return "UNDEFINED"
}

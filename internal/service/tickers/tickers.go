// Package tickers extracts and normalizes ticker symbols from free-form
// chat messages, including Thai-language requests.
package tickers

import (
	"regexp"
	"strings"
)

var tickerPattern = regexp.MustCompile(`\b([A-Z]{2,5})\b`)

// excludeWords are uppercase tokens that match the ticker pattern but are
// never tickers: trading verbs, common English words, chat terms.
var excludeWords = map[string]struct{}{
	// trading actions
	"BUY": {}, "SELL": {}, "HOLD": {}, "LONG": {}, "SHORT": {}, "STOP": {},
	"LOSS": {}, "TAKE": {}, "PROFIT": {},
	// common English words
	"USER": {}, "THE": {}, "AND": {}, "FOR": {}, "ARE": {}, "BUT": {}, "NOT": {},
	"YOU": {}, "ALL": {}, "CAN": {}, "HAD": {}, "HER": {}, "WAS": {}, "ONE": {},
	"OUR": {}, "OUT": {}, "HAS": {}, "HIS": {}, "HOW": {}, "ITS": {}, "LET": {},
	"MAY": {}, "NEW": {}, "NOW": {}, "OLD": {}, "SEE": {}, "WAY": {}, "WHO": {},
	"BOY": {}, "DID": {}, "GET": {}, "HIM": {}, "SAY": {}, "SHE": {}, "TOO": {},
	"USE": {}, "DAY": {}, "HEY": {}, "YES": {},
	// chat and system terms
	"CHAT": {}, "BOT": {}, "API": {}, "URL": {}, "HTTP": {}, "HTTPS": {},
	"WWW": {}, "COM": {}, "ORG": {}, "NET": {}, "JSON": {}, "HTML": {}, "CSS": {},
	"MSG": {}, "ERR": {}, "LOG": {}, "APP": {}, "DEV": {}, "SRC": {}, "ENV": {},
	// greetings and question words
	"HELLO": {}, "THANKS": {}, "THANK": {}, "PLEASE": {}, "HELP": {}, "WHAT": {},
	"WHEN": {}, "WHERE": {}, "WHY": {}, "WHICH": {}, "WITH": {}, "THIS": {},
	"THAT": {}, "HAVE": {}, "FROM": {}, "THEY": {}, "BEEN": {}, "WILL": {},
	"MORE": {}, "SOME": {}, "TIME": {}, "VERY": {}, "JUST": {}, "KNOW": {},
	"COME": {}, "MAKE": {}, "LIKE": {}, "BACK": {}, "ONLY": {}, "OVER": {},
	"SUCH": {}, "INTO": {}, "YEAR": {}, "YOUR": {}, "GOOD": {}, "COULD": {},
	"THEM": {}, "THAN": {}, "THEN": {}, "LOOK": {}, "ALSO": {}, "WELL": {},
	"SHOULD": {}, "WOULD": {},
	// analysis terms
	"RISK": {}, "SAFE": {}, "HIGH": {}, "LOW": {}, "BULL": {}, "BEAR": {},
	"TERM": {}, "RETURNS": {}, "PRICE": {}, "VALUE": {}, "STOCK": {},
	"MARKET": {}, "TRADE": {}, "INVEST": {}, "MONEY": {}, "FUND": {},
	// report terms
	"NOTE": {}, "INFO": {}, "DATA": {}, "SHOW": {}, "LIST": {}, "VIEW": {},
	"FIND": {}, "TELL": {}, "WANT": {},
}

// knownTwoLetter are the only two-letter matches treated as tickers.
var knownTwoLetter = map[string]struct{}{
	"GE": {}, "GM": {}, "HP": {}, "AT": {}, "LG": {}, "BK": {},
}

var companyNames = map[string]string{
	"MICROSOFT": "MSFT", "APPLE": "AAPL", "GOOGLE": "GOOGL", "ALPHABET": "GOOGL",
	"AMAZON": "AMZN", "META": "META", "FACEBOOK": "META", "NVIDIA": "NVDA",
	"TESLA": "TSLA", "NETFLIX": "NFLX", "INTEL": "INTC", "ORACLE": "ORCL",
	"SALESFORCE": "CRM", "ADOBE": "ADBE", "PAYPAL": "PYPL", "UBER": "UBER",
	"AIRBNB": "ABNB", "SPOTIFY": "SPOT", "SHOPIFY": "SHOP", "BLOCK": "SQ",
	"SNAPCHAT": "SNAP", "PINTEREST": "PINS", "COINBASE": "COIN",
	"ROBINHOOD": "HOOD", "PALANTIR": "PLTR", "ZOOM": "ZM",
	"TWITTER": "TWTR", "SQUARE": "SQ",
	"JPMORGAN": "JPM", "GOLDMAN": "GS", "VISA": "V", "MASTERCARD": "MA",
	"BERKSHIRE": "BRK-B", "BANK OF AMERICA": "BAC", "WELLS FARGO": "WFC",
	"MORGAN STANLEY": "MS", "CITIGROUP": "C", "BLACKROCK": "BLK",
	"WALMART": "WMT", "COSTCO": "COST", "TARGET": "TGT", "NIKE": "NKE",
	"STARBUCKS": "SBUX", "MCDONALDS": "MCD", "COCA-COLA": "KO", "PEPSI": "PEP",
	"DISNEY": "DIS",
	"JOHNSON": "JNJ", "PFIZER": "PFE", "MODERNA": "MRNA", "UNITEDHEALTH": "UNH",
	"BOEING": "BA", "EXXON": "XOM", "CHEVRON": "CVX",
}

var cryptoNames = map[string]string{
	"BITCOIN": "BTC", "ETHEREUM": "ETH", "BINANCE": "BNB", "RIPPLE": "XRP",
	"CARDANO": "ADA", "DOGECOIN": "DOGE", "SOLANA": "SOL", "POLYGON": "MATIC",
	"POLKADOT": "DOT", "AVALANCHE": "AVAX", "CHAINLINK": "LINK",
	"LITECOIN": "LTC", "UNISWAP": "UNI", "SHIBA": "SHIB",
}

// corrections maps common typos and bare crypto symbols to their
// canonical form.
var corrections = map[string]string{
	"APPL": "AAPL",
	"TSMC": "TSM",
	"GOOG": "GOOGL",
	"FB":   "META",

	"BTC": "BTC-USD", "ETH": "ETH-USD", "BNB": "BNB-USD", "XRP": "XRP-USD",
	"ADA": "ADA-USD", "DOGE": "DOGE-USD", "SOL": "SOL-USD", "MATIC": "MATIC-USD",
	"DOT": "DOT-USD", "AVAX": "AVAX-USD",
}

var cryptoSymbols = map[string]struct{}{
	"BTC": {}, "ETH": {}, "BNB": {}, "XRP": {}, "ADA": {}, "DOGE": {},
	"SOL": {}, "MATIC": {}, "DOT": {}, "AVAX": {}, "LINK": {}, "LTC": {},
	"UNI": {}, "SHIB": {}, "ATOM": {}, "XLM": {}, "ALGO": {}, "VET": {},
	"FTM": {}, "NEAR": {},
}

// Extract finds a ticker symbol in a chat message. It matches direct
// symbols first, then company names, then crypto names. Returns "" when
// no ticker is present.
func Extract(message string) string {
	if message == "" {
		return ""
	}

	upper := strings.ToUpper(strings.TrimSpace(message))

	for _, match := range tickerPattern.FindAllString(upper, -1) {
		if _, skip := excludeWords[match]; skip {
			continue
		}
		if len(match) == 2 {
			if _, known := knownTwoLetter[match]; !known {
				continue
			}
		}
		return match
	}

	for name, ticker := range companyNames {
		if strings.Contains(upper, name) {
			return ticker
		}
	}

	for name, ticker := range cryptoNames {
		if strings.Contains(upper, name) {
			return ticker
		}
	}

	return ""
}

// Normalize corrects common typos, maps company names to symbols, and
// appends -USD to bare crypto symbols.
func Normalize(ticker string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))

	if corrected, ok := companyNames[t]; ok {
		return corrected
	}
	if corrected, ok := corrections[t]; ok {
		return corrected
	}
	return t
}

// IsCrypto reports whether the ticker denotes a cryptocurrency, either a
// bare symbol (BTC) or a quoted pair (BTC-USD).
func IsCrypto(ticker string) bool {
	if ticker == "" {
		return false
	}
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if strings.HasSuffix(t, "-USD") {
		return true
	}
	_, ok := cryptoSymbols[t]
	return ok
}

// Base strips the -USD suffix from a crypto pair: BTC-USD -> BTC.
func Base(ticker string) string {
	return strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(ticker)), "-USD")
}

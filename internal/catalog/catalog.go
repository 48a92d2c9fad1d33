// Package catalog holds the fixed universe of tracked fan tokens and the
// exchanges they trade on, plus a seeder that loads it into storage.
// The catalog only ever grows; delisted entries are deactivated in storage,
// never removed here.
package catalog

import "fantoken-intel/internal/domain"

// Tokens is the tracked fan token universe. PriceFeedID is the identifier
// on the external market data feed.
func Tokens() []*domain.Token {
	return []*domain.Token{
		// Base token
		{Symbol: "CHZ", Name: "Chiliz", Team: "Chiliz Chain", PriceFeedID: "chiliz", IsActive: true},

		// Football - La Liga (Spain)
		{Symbol: "BAR", Name: "FC Barcelona Fan Token", Team: "FC Barcelona", League: "La Liga", Country: "Spain", PriceFeedID: "fc-barcelona-fan-token", IsActive: true},
		{Symbol: "ATM", Name: "Atletico Madrid Fan Token", Team: "Atlético de Madrid", League: "La Liga", Country: "Spain", PriceFeedID: "atletico-madrid", IsActive: true},
		{Symbol: "VCF", Name: "Valencia CF Fan Token", Team: "Valencia CF", League: "La Liga", Country: "Spain", PriceFeedID: "valencia-cf-fan-token", IsActive: true},
		{Symbol: "SEVILLA", Name: "Sevilla Fan Token", Team: "Sevilla FC", League: "La Liga", Country: "Spain", PriceFeedID: "sevilla-fan-token", IsActive: true},

		// Football - Serie A (Italy)
		{Symbol: "JUV", Name: "Juventus Fan Token", Team: "Juventus", League: "Serie A", Country: "Italy", PriceFeedID: "juventus-fan-token", IsActive: true},
		{Symbol: "ACM", Name: "AC Milan Fan Token", Team: "AC Milan", League: "Serie A", Country: "Italy", PriceFeedID: "ac-milan-fan-token", IsActive: true},
		{Symbol: "ASR", Name: "AS Roma Fan Token", Team: "AS Roma", League: "Serie A", Country: "Italy", PriceFeedID: "as-roma-fan-token", IsActive: true},
		{Symbol: "LAZIO", Name: "Lazio Fan Token", Team: "SS Lazio", League: "Serie A", Country: "Italy", PriceFeedID: "lazio-fan-token", IsActive: true},
		{Symbol: "INTER", Name: "Inter Milan Fan Token", Team: "Inter Milan", League: "Serie A", Country: "Italy", PriceFeedID: "inter-milan-fan-token", IsActive: true},
		{Symbol: "NAP", Name: "Napoli Fan Token", Team: "SSC Napoli", League: "Serie A", Country: "Italy", PriceFeedID: "napoli-fan-token", IsActive: true},
		{Symbol: "UDI", Name: "Udinese Calcio Fan Token", Team: "Udinese Calcio", League: "Serie A", Country: "Italy", PriceFeedID: "udinese-calcio-fan-token", IsActive: true},

		// Football - Premier League (England)
		{Symbol: "CITY", Name: "Manchester City Fan Token", Team: "Manchester City", League: "Premier League", Country: "England", PriceFeedID: "manchester-city-fan-token", IsActive: true},
		{Symbol: "AFC", Name: "Arsenal Fan Token", Team: "Arsenal FC", League: "Premier League", Country: "England", PriceFeedID: "arsenal-fan-token", IsActive: true},
		{Symbol: "SPURS", Name: "Tottenham Hotspur Fan Token", Team: "Tottenham Hotspur", League: "Premier League", Country: "England", PriceFeedID: "tottenham-hotspur-fc-fan-token", IsActive: true},
		{Symbol: "EFC", Name: "Everton Fan Token", Team: "Everton FC", League: "Premier League", Country: "England", PriceFeedID: "everton-fan-token", IsActive: true},
		{Symbol: "AVL", Name: "Aston Villa Fan Token", Team: "Aston Villa", League: "Premier League", Country: "England", PriceFeedID: "aston-villa-fan-token", IsActive: true},

		// Football - Ligue 1 (France)
		{Symbol: "PSG", Name: "Paris Saint-Germain Fan Token", Team: "Paris Saint-Germain", League: "Ligue 1", Country: "France", PriceFeedID: "paris-saint-germain-fan-token", IsActive: true},
		{Symbol: "ASM", Name: "AS Monaco Fan Token", Team: "AS Monaco", League: "Ligue 1", Country: "France", PriceFeedID: "as-monaco-fan-token", IsActive: true},

		// Football - Primeira Liga (Portugal)
		{Symbol: "PORTO", Name: "FC Porto Fan Token", Team: "FC Porto", League: "Primeira Liga", Country: "Portugal", PriceFeedID: "fc-porto", IsActive: true},
		{Symbol: "BENFICA", Name: "SL Benfica Fan Token", Team: "SL Benfica", League: "Primeira Liga", Country: "Portugal", PriceFeedID: "sl-benfica-fan-token", IsActive: true},

		// Football - Süper Lig (Turkey)
		{Symbol: "GAL", Name: "Galatasaray Fan Token", Team: "Galatasaray", League: "Süper Lig", Country: "Turkey", PriceFeedID: "galatasaray-fan-token", IsActive: true},
		{Symbol: "TRA", Name: "Trabzonspor Fan Token", Team: "Trabzonspor", League: "Süper Lig", Country: "Turkey", PriceFeedID: "trabzonspor-fan-token", IsActive: true},
		{Symbol: "GOZ", Name: "Göztepe S.K. Fan Token", Team: "Göztepe S.K.", League: "Süper Lig", Country: "Turkey", PriceFeedID: "goztepe-s-k-fan-token", IsActive: true},
		{Symbol: "SAM", Name: "Samsunspor Fan Token", Team: "Samsunspor", League: "Süper Lig", Country: "Turkey", PriceFeedID: "samsunspor-fan-token", IsActive: true},
		{Symbol: "ALA", Name: "Alanyaspor Fan Token", Team: "Alanyaspor", League: "Süper Lig", Country: "Turkey", PriceFeedID: "alanyaspor-fan-token", IsActive: true},
		{Symbol: "IBFK", Name: "İstanbul Başakşehir Fan Token", Team: "İstanbul Başakşehir", League: "Süper Lig", Country: "Turkey", PriceFeedID: "istanbul-basaksehir-fan-token", IsActive: true},
		{Symbol: "BJK", Name: "Beşiktaş Fan Token", Team: "Beşiktaş", League: "Süper Lig", Country: "Turkey", PriceFeedID: "besiktas", IsActive: true},
		{Symbol: "FB", Name: "Fenerbahçe Fan Token", Team: "Fenerbahçe", League: "Süper Lig", Country: "Turkey", PriceFeedID: "fenerbahce-token", IsActive: true},

		// Football - Brasileirão (Brazil)
		{Symbol: "SANTOS", Name: "Santos FC Fan Token", Team: "Santos FC", League: "Brasileirão", Country: "Brazil", PriceFeedID: "santos-fc-fan-token", IsActive: true},
		{Symbol: "MENGO", Name: "Flamengo Fan Token", Team: "Flamengo", League: "Brasileirão", Country: "Brazil", PriceFeedID: "flamengo-fan-token", IsActive: true},
		{Symbol: "FLU", Name: "Fluminense FC Fan Token", Team: "Fluminense", League: "Brasileirão", Country: "Brazil", PriceFeedID: "fluminense-fc-fan-token", IsActive: true},
		{Symbol: "SCCP", Name: "S.C. Corinthians Fan Token", Team: "Corinthians", League: "Brasileirão", Country: "Brazil", PriceFeedID: "s-c-corinthians-fan-token", IsActive: true},
		{Symbol: "SPFC", Name: "Sao Paulo FC Fan Token", Team: "São Paulo FC", League: "Brasileirão", Country: "Brazil", PriceFeedID: "sao-paulo-fc-fan-token", IsActive: true},
		{Symbol: "GALO", Name: "Atlético Mineiro Fan Token", Team: "Atlético Mineiro", League: "Brasileirão", Country: "Brazil", PriceFeedID: "clube-atletico-mineiro-fan-token", IsActive: true},
		{Symbol: "VERDAO", Name: "Palmeiras Fan Token", Team: "Palmeiras", League: "Brasileirão", Country: "Brazil", PriceFeedID: "palmeiras-fan-token", IsActive: true},
		{Symbol: "VASCO", Name: "Vasco da Gama Fan Token", Team: "Vasco da Gama", League: "Brasileirão", Country: "Brazil", PriceFeedID: "vasco-da-gama-fan-token", IsActive: true},
		{Symbol: "BAHIA", Name: "Esporte Clube Bahia Fan Token", Team: "EC Bahia", League: "Brasileirão", Country: "Brazil", PriceFeedID: "esporte-clube-bahia-fan-token", IsActive: true},
		{Symbol: "SACI", Name: "SC Internacional Fan Token", Team: "Internacional", League: "Brasileirão", Country: "Brazil", PriceFeedID: "sc-internacional-fan-token", IsActive: true},

		// Football - Argentina
		{Symbol: "ARG", Name: "Argentine Football Association Fan Token", Team: "Argentina NT", League: "National Team", Country: "Argentina", PriceFeedID: "argentine-football-association-fan-token", IsActive: true},
		{Symbol: "CAI", Name: "Club Atletico Independiente Fan Token", Team: "Independiente", League: "Argentine Primera", Country: "Argentina", PriceFeedID: "club-atletico-independiente", IsActive: true},

		// Football - other leagues
		{Symbol: "LEG", Name: "Legia Warsaw Fan Token", Team: "Legia Warsaw", League: "Ekstraklasa", Country: "Poland", PriceFeedID: "legia-warsaw-fan-token", IsActive: true},
		{Symbol: "TIGRES", Name: "Tigres Fan Token", Team: "Tigres UANL", League: "Liga MX", Country: "Mexico", PriceFeedID: "tigres-fan-token", IsActive: true},
		{Symbol: "YBO", Name: "Young Boys Fan Token", Team: "BSC Young Boys", League: "Swiss Super League", Country: "Switzerland", PriceFeedID: "young-boys-fan-token", IsActive: true},
		{Symbol: "STV", Name: "Sint-Truidense VV Fan Token", Team: "Sint-Truidense VV", League: "Belgian Pro League", Country: "Belgium", PriceFeedID: "sint-truidense-voetbalvereniging-fan-token", IsActive: true},

		// Football - national teams
		{Symbol: "POR", Name: "Portugal National Team Fan Token", Team: "Portugal NT", League: "National Team", Country: "Portugal", PriceFeedID: "portugal-national-team-fan-token", IsActive: true},
		{Symbol: "ITA", Name: "Italian National Football Team Fan Token", Team: "Italy NT", League: "National Team", Country: "Italy", PriceFeedID: "italian-national-football-team-fan-token", IsActive: true},
		{Symbol: "VATRENI", Name: "Croatian Football Federation Token", Team: "Croatia NT", League: "National Team", Country: "Croatia", PriceFeedID: "croatian-ff-fan-token", IsActive: true},
		{Symbol: "SNFT", Name: "Spain National Football Team Fan Token", Team: "Spain NT", League: "National Team", Country: "Spain", PriceFeedID: "spain-national-fan-token", IsActive: true},
		{Symbol: "BFT", Name: "Brazil National Football Team Fan Token", Team: "Brazil NT", League: "National Team", Country: "Brazil", PriceFeedID: "brazil-fan-token", IsActive: true},

		// Formula 1
		{Symbol: "ALPINE", Name: "Alpine F1 Team Fan Token", Team: "Alpine F1", League: "Formula 1", Country: "France", PriceFeedID: "alpine-f1-team-fan-token", IsActive: true},
		{Symbol: "SAUBER", Name: "Alfa Romeo Racing ORLEN Fan Token", Team: "Sauber F1", League: "Formula 1", Country: "Switzerland", PriceFeedID: "alfa-romeo-racing-orlen-fan-token", IsActive: true},
		{Symbol: "AM", Name: "Aston Martin Cognizant Fan Token", Team: "Aston Martin F1", League: "Formula 1", Country: "UK", PriceFeedID: "aston-martin-cognizant-fan-token", IsActive: true},

		// MMA / fighting
		{Symbol: "UFC", Name: "UFC Fan Token", Team: "UFC", League: "MMA", Country: "USA", PriceFeedID: "ufc-fan-token", IsActive: true},
		{Symbol: "PFL", Name: "Professional Fighters League Fan Token", Team: "PFL", League: "MMA", Country: "USA", PriceFeedID: "professional-fighters-league-fan-token", IsActive: true},

		// Esports
		{Symbol: "OG", Name: "OG Fan Token", Team: "OG Esports", League: "Esports", PriceFeedID: "og-fan-token", IsActive: true},
		{Symbol: "NAVI", Name: "Natus Vincere Fan Token", Team: "Natus Vincere", League: "Esports", Country: "Ukraine", PriceFeedID: "natus-vincere-fan-token", IsActive: true},
		{Symbol: "ALL", Name: "Alliance Fan Token", Team: "Alliance", League: "Esports", Country: "Sweden", PriceFeedID: "alliance-fan-token", IsActive: true},
		{Symbol: "TH", Name: "Team Heretics Fan Token", Team: "Team Heretics", League: "Esports", Country: "Spain", PriceFeedID: "team-heretics-fan-token", IsActive: true},
		{Symbol: "DOJO", Name: "Ninjas in Pyjamas Fan Token", Team: "Ninjas in Pyjamas", League: "Esports", Country: "Sweden", PriceFeedID: "ninjas-in-pyjamas", IsActive: true},

		// Individual
		{Symbol: "MODRIC", Name: "Luka Modric Fan Token", Team: "Luka Modric", League: "Individual", Country: "Croatia", PriceFeedID: "luka-modric", IsActive: true},
	}
}

// Exchanges is the tracked venue list. Priority is the tie-break rank when
// venues report the same instant (1 = highest).
func Exchanges() []*domain.Exchange {
	return []*domain.Exchange{
		{Code: "binance", Name: "Binance", FeedID: "binance", Priority: 1, IsActive: true},
		{Code: "okx", Name: "OKX", FeedID: "okx", Priority: 2, IsActive: true},
		{Code: "upbit", Name: "Upbit", FeedID: "upbit", Priority: 3, IsActive: true},
		{Code: "paribu", Name: "Paribu", FeedID: "paribu", Priority: 4, IsActive: true},
		{Code: "bithumb", Name: "Bithumb", FeedID: "bithumb", Priority: 5, IsActive: true},
		{Code: "coinbase", Name: "Coinbase", FeedID: "gdax", Priority: 6, IsActive: true},
		{Code: "kraken", Name: "Kraken", FeedID: "kraken", Priority: 7, IsActive: true},
		{Code: "kucoin", Name: "KuCoin", FeedID: "kucoin", Priority: 8, IsActive: true},
		{Code: "bybit", Name: "Bybit", FeedID: "bybit_spot", Priority: 9, IsActive: true},
		{Code: "gate", Name: "Gate.io", FeedID: "gate", Priority: 10, IsActive: true},
		{Code: "htx", Name: "HTX (Huobi)", FeedID: "huobi", Priority: 11, IsActive: true},
		{Code: "bitfinex", Name: "Bitfinex", FeedID: "bitfinex", Priority: 12, IsActive: true},
		{Code: "mexc", Name: "MEXC", FeedID: "mxc", Priority: 13, IsActive: true},
		{Code: "mercadobitcoin", Name: "Mercado Bitcoin", FeedID: "mercado_bitcoin", Priority: 14, IsActive: true},
	}
}

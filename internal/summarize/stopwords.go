package summarize

import "strings"

// stopwordList must stay in sync with the scores produced by earlier releases;
// adding or removing a word changes which sentences get picked.
const stopwordList = "a,an,the,of,in,on,for,to,from,by,with,as,at,that,this,these,those,and,or,not,be,is,are,was,were,been,being,has,have,had,do,does,did,will,would,shall,should,can,could,may,might,must,if,then,else,when,while,about,into,over,after,before,up,down,out,off,again,further,here,there,why,how,all,any,both,each,few,more,most,other,some,such,no,nor,only,own,same,so,than,too,very"

var stopwords = func() map[string]struct{} {
	words := strings.Split(stopwordList, ",")
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

// IsStopword reports whether token carries no topical weight.
// The token is expected to be lowercase already.
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}

// Stopwords returns a copy of the stopword list in its canonical order.
func Stopwords() []string {
	return strings.Split(stopwordList, ",")
}

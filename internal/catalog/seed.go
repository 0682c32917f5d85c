package catalog

import "quizlive/internal/domain"

// Seed returns the built-in demo question set (Italian CS training material);
// production catalogs are loaded from Postgres or imported via the API.
func Seed() []domain.Question {
	return []domain.Question{
		{
			Topic: "Reti", Level: domain.LevelBase, Difficulty: 1,
			Question:        "Quale dei seguenti protocolli è orientato alla connessione?",
			Options:         []string{"A. UDP", "B. TCP", "C. ICMP", "D. ARP"},
			AnswerIndex:     1,
			ExplainBrief:    "TCP è orientato alla connessione e garantisce consegna affidabile dei dati attraverso un handshake a tre vie.",
			ExplainDetailed: "TCP (Transmission Control Protocol) stabilisce una connessione tra mittente e destinatario prima di trasmettere dati. Utilizza un handshake a tre vie (SYN, SYN-ACK, ACK) per stabilire la connessione e garantisce la consegna ordinata e affidabile dei pacchetti. UDP invece è connectionless e non garantisce la consegna.",
			SourceRefs:      []string{"reti_tcp_2024#chunk_07"},
		},
		{
			Topic: "Reti", Level: domain.LevelBase, Difficulty: 1,
			Question:        "Qual è il numero di porta standard per HTTP?",
			Options:         []string{"A. 21", "B. 25", "C. 80", "D. 443"},
			AnswerIndex:     2,
			ExplainBrief:    "HTTP utilizza la porta 80 come standard per le comunicazioni web non crittografate.",
			ExplainDetailed: "La porta 80 è la porta standard assegnata al protocollo HTTP (HyperText Transfer Protocol) per le comunicazioni web. La porta 443 è invece utilizzata per HTTPS (HTTP sicuro), la porta 21 per FTP e la porta 25 per SMTP. Queste assegnazioni sono standardizzate dalla IANA.",
			SourceRefs:      []string{"reti_porte_2024#chunk_12"},
		},
		{
			Topic: "Reti", Level: domain.LevelBase, Difficulty: 1,
			Question:        "Quale protocollo viene utilizzato per la risoluzione dei nomi di dominio?",
			Options:         []string{"A. DHCP", "B. DNS", "C. FTP", "D. SMTP"},
			AnswerIndex:     1,
			ExplainBrief:    "DNS (Domain Name System) traduce i nomi di dominio in indirizzi IP.",
			ExplainDetailed: "Il DNS è un sistema distribuito che traduce i nomi di dominio leggibili dall'uomo (come www.example.com) negli indirizzi IP numerici necessari per la comunicazione di rete. Utilizza una struttura gerarchica di server DNS per risolvere le query.",
			SourceRefs:      []string{"reti_dns_2024#chunk_05"},
		},
		{
			Topic: "Reti", Level: domain.LevelBase, Difficulty: 1,
			Question:        "Quale classe di indirizzi IP ha il range 192.168.x.x?",
			Options:         []string{"A. Classe A", "B. Classe B", "C. Classe C", "D. Classe D"},
			AnswerIndex:     2,
			ExplainBrief:    "192.168.x.x appartiene alla Classe C degli indirizzi IP privati.",
			ExplainDetailed: "Gli indirizzi 192.168.0.0/16 sono riservati per uso privato secondo RFC 1918 e appartengono alla Classe C. Questi indirizzi non sono instradabili su Internet e sono utilizzati per reti locali private.",
			SourceRefs:      []string{"reti_ip_2024#chunk_09"},
		},
		{
			Topic: "Reti", Level: domain.LevelBase, Difficulty: 1,
			Question:        "Cosa significa l'acronimo LAN?",
			Options:         []string{"A. Large Area Network", "B. Local Area Network", "C. Long Access Network", "D. Limited Access Network"},
			AnswerIndex:     1,
			ExplainBrief:    "LAN significa Local Area Network, una rete locale limitata geograficamente.",
			ExplainDetailed: "Una LAN (Local Area Network) è una rete di computer che copre un'area geografica limitata, tipicamente un edificio o un campus. Le LAN sono caratterizzate da alta velocità, bassa latenza e sono sotto il controllo di una singola organizzazione.",
			SourceRefs:      []string{"reti_topologie_2024#chunk_02"},
		},
		{
			Topic: "Programmazione", Level: domain.LevelBase, Difficulty: 1,
			Question:        "Quale di questi è un linguaggio di programmazione interpretato?",
			Options:         []string{"A. C", "B. C++", "C. Python", "D. Rust"},
			AnswerIndex:     2,
			ExplainBrief:    "Python è un linguaggio interpretato che esegue il codice riga per riga attraverso un interprete.",
			ExplainDetailed: "Python è un linguaggio di programmazione interpretato, il che significa che il codice viene eseguito direttamente dall'interprete senza bisogno di una fase di compilazione separata. C, C++ e Rust sono linguaggi compilati che richiedono la trasformazione del codice sorgente in codice macchina prima dell'esecuzione.",
			SourceRefs:      []string{"prog_linguaggi_2024#chunk_03"},
		},
		{
			Topic: "Programmazione", Level: domain.LevelBase, Difficulty: 1,
			Question:        "Cosa rappresenta il termine 'variabile' in programmazione?",
			Options:         []string{"A. Un valore costante", "B. Un contenitore per dati", "C. Un tipo di funzione", "D. Un errore di sintassi"},
			AnswerIndex:     1,
			ExplainBrief:    "Una variabile è un contenitore che può memorizzare e modificare dati durante l'esecuzione del programma.",
			ExplainDetailed: "In programmazione, una variabile è un'area di memoria identificata da un nome che può contenere dati di vario tipo. Il valore di una variabile può essere modificato durante l'esecuzione del programma, a differenza delle costanti che mantengono sempre lo stesso valore.",
			SourceRefs:      []string{"prog_variabili_2024#chunk_01"},
		},
		{
			Topic: "Programmazione", Level: domain.LevelBase, Difficulty: 1,
			Question:        "Quale struttura di controllo permette di ripetere un blocco di codice?",
			Options:         []string{"A. if-else", "B. switch", "C. for", "D. return"},
			AnswerIndex:     2,
			ExplainBrief:    "Il ciclo 'for' è una struttura di controllo che permette di ripetere un blocco di codice un numero determinato di volte.",
			ExplainDetailed: "Il ciclo 'for' è una struttura di controllo iterativa che permette di eseguire ripetutamente un blocco di codice. È particolarmente utile quando si conosce in anticipo il numero di iterazioni da eseguire o quando si deve iterare su una collezione di elementi.",
			SourceRefs:      []string{"prog_cicli_2024#chunk_04"},
		},
		{
			Topic: "Reti", Level: domain.LevelMedio, Difficulty: 2,
			Question:        "Nel modello OSI, a quale livello opera il protocollo TCP?",
			Options:         []string{"A. Livello 3 (Network)", "B. Livello 4 (Transport)", "C. Livello 5 (Session)", "D. Livello 6 (Presentation)"},
			AnswerIndex:     1,
			ExplainBrief:    "TCP opera al livello 4 (Transport) del modello OSI, gestendo la comunicazione end-to-end tra processi.",
			ExplainDetailed: "Nel modello OSI a 7 livelli, TCP (Transmission Control Protocol) opera al livello 4 chiamato Transport Layer. Questo livello è responsabile della comunicazione end-to-end tra processi su host diversi, gestendo segmentazione, controllo di flusso, controllo degli errori e riassemblaggio dei dati.",
			SourceRefs:      []string{"reti_osi_2024#chunk_15"},
		},
		{
			Topic: "Programmazione", Level: domain.LevelMedio, Difficulty: 2,
			Question:        "Qual è la complessità temporale dell'algoritmo di ordinamento QuickSort nel caso medio?",
			Options:         []string{"A. O(n)", "B. O(n log n)", "C. O(n²)", "D. O(2^n)"},
			AnswerIndex:     1,
			ExplainBrief:    "QuickSort ha complessità O(n log n) nel caso medio grazie alla strategia divide-et-impera.",
			ExplainDetailed: "QuickSort utilizza una strategia divide-et-impera che nel caso medio divide l'array in due parti approssimativamente uguali. Questo porta a una profondità di ricorsione di log n livelli, e ad ogni livello vengono effettuate n operazioni di confronto e scambio, risultando in una complessità O(n log n).",
			SourceRefs:      []string{"algo_sorting_2024#chunk_08"},
		},
		{
			Topic: "Reti", Level: domain.LevelAvanzato, Difficulty: 3,
			Question:        "Quale algoritmo di routing utilizza il concetto di 'distance vector'?",
			Options:         []string{"A. OSPF", "B. RIP", "C. BGP", "D. IS-IS"},
			AnswerIndex:     1,
			ExplainBrief:    "RIP (Routing Information Protocol) utilizza l'algoritmo distance vector per determinare i percorsi ottimali.",
			ExplainDetailed: "RIP utilizza l'algoritmo Bellman-Ford distance vector dove ogni router mantiene una tabella con la distanza (numero di hop) verso ogni destinazione. I router si scambiano periodicamente le loro tabelle di routing con i vicini. OSPF e IS-IS utilizzano invece algoritmi link-state, mentre BGP usa path vector.",
			SourceRefs:      []string{"reti_routing_2024#chunk_22"},
		},
		{
			Topic: "Programmazione", Level: domain.LevelAvanzato, Difficulty: 3,
			Question:        "Nel pattern Observer, qual è il ruolo del Subject?",
			Options:         []string{"A. Osserva i cambiamenti negli Observer", "B. Notifica i cambiamenti agli Observer", "C. Implementa la logica di business", "D. Gestisce la persistenza dei dati"},
			AnswerIndex:     1,
			ExplainBrief:    "Il Subject mantiene una lista di Observer e li notifica automaticamente quando il suo stato cambia.",
			ExplainDetailed: "Nel pattern Observer, il Subject (o Observable) è l'oggetto che viene osservato. Mantiene una lista di Observer registrati e fornisce metodi per aggiungere, rimuovere e notificare gli Observer. Quando il suo stato interno cambia, il Subject notifica automaticamente tutti gli Observer registrati chiamando il loro metodo update().",
			SourceRefs:      []string{"design_patterns_2024#chunk_18"},
		},
	}
}

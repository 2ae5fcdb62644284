package engine

import "acadtutor/internal/domain"

// mcq builds a multiple-choice question; options are keyed A, B, C, ... in argument order.
func mcq(d domain.Difficulty, prompt, correct, explanation string, options ...string) domain.Question {
	opts := make(map[string]string, len(options))
	for i, text := range options {
		opts[string(domain.OptionAlphabet[i])] = text
	}
	return domain.Question{
		Prompt:        prompt,
		Options:       opts,
		CorrectAnswer: correct,
		Explanation:   explanation,
		Difficulty:    d,
	}
}

const (
	easy   = domain.DifficultyEasy
	medium = domain.DifficultyMedium
	hard   = domain.DifficultyHard
)

// SeedCatalog returns the built-in curated questions. Each call returns a fresh copy.
func SeedCatalog() Catalog {
	return Catalog{
		"Blockchain": {
			"Basics": {
				mcq(easy, "What is the first and most famous cryptocurrency?", "B",
					"Bitcoin was the first cryptocurrency, created by Satoshi Nakamoto in 2009.",
					"Ethereum", "Bitcoin", "Litecoin", "Ripple"),
				mcq(easy, "What is a smart contract?", "A",
					"Smart contracts are self-executing contracts with terms directly written into code.",
					"A self-executing contract with terms written in code", "A legal document", "A cryptocurrency wallet", "A mining algorithm"),
				mcq(easy, "What is a block in blockchain?", "C",
					"A block is a collection of transaction data that is cryptographically linked to previous blocks.",
					"A cryptocurrency unit", "A mining reward", "A collection of transaction data", "A digital wallet"),
				mcq(easy, "What makes blockchain secure?", "A",
					"Blockchain security comes from cryptographic hashing, decentralization, and consensus mechanisms.",
					"Cryptographic hashing and decentralization", "Government regulation", "Password protection", "Bank verification"),
				mcq(easy, "What is a consensus mechanism?", "B",
					"A consensus mechanism ensures all nodes in a blockchain network agree on transaction validity.",
					"A mining process", "A protocol for network agreement", "A wallet feature", "A trading mechanism"),
			},
			"Blockchain Basics": {
				mcq(easy, "What is a blockchain?", "B",
					"A blockchain is a distributed ledger technology that maintains a continuously growing list of records (blocks) linked using cryptography.",
					"A type of cryptocurrency", "A distributed ledger technology", "A programming language", "A web browser"),
				mcq(easy, "What does 'decentralized' mean in blockchain context?", "B",
					"Decentralized means the blockchain is distributed across multiple nodes rather than controlled by a single authority.",
					"Controlled by one authority", "Distributed across multiple nodes", "Located in one data center", "Managed by banks only"),
				mcq(medium, "What is a hash function's primary purpose in blockchain?", "B",
					"Hash functions create unique, fixed-size identifiers for blocks, ensuring data integrity and linking blocks together.",
					"To encrypt user passwords", "To create unique block identifiers", "To compress file sizes", "To speed up transactions"),
				mcq(medium, "What is 'mining' in blockchain?", "B",
					"Mining is the process of validating transactions, solving cryptographic puzzles, and adding new blocks to the blockchain.",
					"Extracting cryptocurrency from the ground", "Validating transactions and creating new blocks", "Stealing cryptocurrency", "Buying cryptocurrency"),
				mcq(hard, "What is the Byzantine Generals Problem in blockchain context?", "B",
					"The Byzantine Generals Problem addresses how to reach consensus in a distributed network where some nodes may be unreliable or malicious.",
					"A historical military strategy", "A consensus problem in distributed systems", "A type of cryptocurrency attack", "A blockchain scaling issue"),
			},
			"Smart Contracts": {
				mcq(easy, "Which platform popularized general-purpose smart contracts?", "C",
					"Ethereum introduced a Turing-complete virtual machine that made general-purpose smart contracts practical.",
					"Bitcoin", "Litecoin", "Ethereum", "Dogecoin"),
			},
		},
		"Mathematics": {
			"Algebra": {
				mcq(easy, "What is the value of x in the equation x + 5 = 12?", "A",
					"Subtract 5 from both sides: x = 12 - 5 = 7.",
					"7", "17", "5", "12"),
				mcq(easy, "Simplify: 3x + 2x", "B",
					"Combine like terms: 3x + 2x = (3+2)x = 5x.",
					"6x", "5x", "3x^2", "5x^2"),
				mcq(easy, "What is the coefficient of x in the expression 7x + 3?", "B",
					"The coefficient is the number multiplying the variable, which is 7.",
					"3", "7", "10", "x"),
				mcq(medium, "Solve for x: 2x - 7 = 3x + 1", "A",
					"Move terms: -7 - 1 = 3x - 2x, so x = -8.",
					"x = -8", "x = 8", "x = -4", "x = 4"),
				mcq(medium, "Factor: x^2 - 9", "C",
					"This is a difference of squares: x^2 - 3^2 = (x-3)(x+3).",
					"(x-3)(x-3)", "(x+3)(x+3)", "(x-3)(x+3)", "Cannot be factored"),
				mcq(hard, "Find the discriminant of 2x^2 - 5x + 3 = 0", "A",
					"Discriminant = b^2 - 4ac = 25 - 24 = 1.",
					"1", "-7", "25", "49"),
			},
			"Calculus": {
				mcq(easy, "What is the derivative of x^2?", "B",
					"Using the power rule: d/dx(x^2) = 2x.",
					"x", "2x", "x^3", "2"),
				mcq(medium, "Find the derivative of 3x^3 - 2x + 5", "A",
					"d/dx(3x^3 - 2x + 5) = 9x^2 - 2.",
					"9x^2 - 2", "9x^2 + 2", "3x^2 - 2", "9x^2 - 2x"),
			},
		},
		"Computer Science": {
			"Programming": {
				mcq(easy, "Which of the following is a programming language?", "C",
					"Python is a programming language; HTML and CSS are markup and styling languages, and JSON is a data format.",
					"HTML", "CSS", "Python", "JSON"),
				mcq(easy, "What does 'IDE' stand for in programming?", "B",
					"IDE stands for Integrated Development Environment, an application for writing and debugging code.",
					"Internet Development Environment", "Integrated Development Environment", "Internal Data Exchange", "Interactive Design Editor"),
				mcq(medium, "What is the time complexity of binary search?", "B",
					"Binary search halves the search space on every step, giving O(log n).",
					"O(n)", "O(log n)", "O(n^2)", "O(1)"),
			},
			"Data Structures": {
				mcq(easy, "Which data structure follows the LIFO (Last In, First Out) principle?", "B",
					"A stack removes the most recently added element first.",
					"Queue", "Stack", "Array", "Linked List"),
			},
		},
		"Physics": {
			"Mechanics": {
				mcq(easy, "What is the SI unit of force?", "B",
					"The newton (N) is the SI unit of force, named after Isaac Newton.",
					"Joule", "Newton", "Watt", "Pascal"),
			},
		},
	}
}

// SeedWhyWrong returns the curated wrong-answer rationales for the seed questions.
func SeedWhyWrong() WhyWrongTable {
	return WhyWrongTable{
		"What is the first and most famous cryptocurrency?": {
			"A": "Ethereum came later in 2015, though it introduced smart contracts.",
			"C": "Litecoin was created in 2011 as a lighter fork of Bitcoin.",
			"D": "Ripple (XRP) launched in 2012 and focuses on bank settlement.",
		},
		"What is a smart contract?": {
			"B": "A smart contract is code executed by the network, not a paper legal document.",
			"C": "A wallet stores keys; a smart contract is a program deployed on the chain.",
			"D": "Mining algorithms secure the chain; they are not smart contracts.",
		},
		"What is a block in blockchain?": {
			"A": "Coins are units of value recorded in blocks, not the blocks themselves.",
			"B": "Mining rewards are paid for producing blocks but are not the block.",
			"D": "A wallet holds keys and is unrelated to how data is grouped on the chain.",
		},
		"What makes blockchain secure?": {
			"B": "Blockchains work without a central regulator; security is built into the protocol.",
			"C": "Passwords protect accounts, not the integrity of the ledger.",
			"D": "No bank verifies blockchain transactions; the network does.",
		},
		"What is a consensus mechanism?": {
			"A": "Mining is one way to participate in consensus, not the mechanism itself.",
			"C": "Wallet features do not decide which transactions are valid.",
			"D": "Trading happens on exchanges; consensus concerns agreement on the ledger.",
		},
		"What is the value of x in the equation x + 5 = 12?": {
			"B": "17 comes from adding 5 instead of subtracting it from both sides.",
			"C": "5 is the constant being added, not the unknown.",
			"D": "12 is the right-hand side before isolating x.",
		},
		"What is the time complexity of binary search?": {
			"A": "O(n) describes scanning every element, which binary search avoids.",
			"C": "O(n^2) describes nested iteration such as naive sorting.",
			"D": "O(1) would require no search at all, like an index lookup.",
		},
	}
}

// Package nn implements a fully connected multilayer perceptron trained by
// minibatch backpropagation.
//
// A Network is built in three steps: construct it around a data source,
// add layers from input to output, then Initialize to draw the weights and
// allocate optimizer state. Every layer holds batchSize x nodes matrices for
// its activations and activation derivatives; the weights connecting layer i
// to layer i+1 live on layer i, and the bias added to layer i+1 lives on
// layer i+1.
//
// Example:
//
//	net, err := nn.NewNetwork("train.csv", nn.Config{BatchSize: 16})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer net.Close()
//
//	_ = net.AddLayer(4, "linear")
//	_ = net.AddLayer(5, "lecun_tanh")
//	_ = net.AddLayer(2, "linear")
//	if err := net.Initialize(); err != nil {
//	    log.Fatal(err)
//	}
//	stats, err := net.Train(50)
//	acc, err := net.Test("test.csv")
package nn
